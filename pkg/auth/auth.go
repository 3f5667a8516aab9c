// Package auth implements the NIP-42 challenge/response handshake of
// spec.md §4.6: a per-connection challenge is issued at open, and an
// inbound AUTH event is validated against it.
package auth

import (
	"crypto/rand"
	"encoding/hex"

	"nostrd.dev/pkg/event"
)

// NewChallenge generates a fresh 128-bit random identifier, rendered as
// lowercase hex, per spec.md §4.6.
func NewChallenge() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Validate runs spec.md §4.1's validate-auth-event against e, the
// previously issued challenge, and the relay URL this connection
// advertises.
func Validate(e *event.E, minDifficulty, maxTags int, challenge, relayURL string) (ok bool, reason string) {
	return e.ValidateAuthEvent(minDifficulty, maxTags, challenge, relayURL)
}
