package event

import (
	"encoding/hex"
	"math/bits"
	"strconv"
	"strings"
	"time"

	"nostrd.dev/pkg/crypto"
	"nostrd.dev/pkg/reason"
)

// Validate runs the schema, proof-of-work, signature and tag-count checks of
// spec.md §4.1 validate-event. minDifficulty is the configured
// min_pow_difficulty; maxTags is the configured tag-count ceiling.
func (e *E) Validate(minDifficulty, maxTags int) (ok bool, reasonStr string) {
	if ok, reasonStr = e.validateSchema(); !ok {
		return
	}
	if got, err := e.ComputeID(); err != nil || got != e.ID {
		return false, reason.Invalid.F("invalid id")
	}
	difficulty := LeadingZeroBits(e.ID)
	if difficulty < minDifficulty {
		return false, reason.PoW.F("difficulty %d is less than %d", difficulty, minDifficulty)
	}
	if nonce := e.Tags.GetFirst("nonce"); nonce != nil && len(*nonce) >= 3 {
		if target, err := strconv.Atoi((*nonce)[2]); err == nil && target > difficulty {
			return false, reason.PoW.F(
				"actual difficulty %d is less than target difficulty %d", difficulty, target,
			)
		}
	}
	valid, err := crypto.VerifySignature(e.ID, e.Pubkey, e.Sig)
	if err != nil || !valid {
		return false, reason.Invalid.F("signature verification failed")
	}
	if len(e.Tags) > maxTags {
		return false, reason.Invalid.F("too many tags (max %d)", maxTags)
	}
	return true, ""
}

func (e *E) validateSchema() (ok bool, reasonStr string) {
	if len(e.ID) != 64 || !isHex(e.ID) {
		return false, reason.Invalid.F("id must be 64 hex characters")
	}
	if len(e.Pubkey) != 64 || !isHex(e.Pubkey) {
		return false, reason.Invalid.F("pubkey must be 64 hex characters")
	}
	if len(e.Sig) != 128 || !isHex(e.Sig) {
		return false, reason.Invalid.F("sig must be 128 hex characters")
	}
	for _, t := range e.Tags {
		if t == nil {
			return false, reason.Invalid.F("tags must be lists of strings")
		}
	}
	return true, ""
}

func isHex(s string) bool {
	_, err := hex.DecodeString(s)
	return err == nil
}

// LeadingZeroBits counts the leading zero bits of a hex-encoded id: four per
// fully-zero nibble, then the bit-count of the first non-zero nibble.
func LeadingZeroBits(idHex string) int {
	count := 0
	for _, c := range idHex {
		nibble, err := strconv.ParseUint(string(c), 16, 8)
		if err != nil {
			return count
		}
		if nibble == 0 {
			count += 4
			continue
		}
		count += bits.LeadingZeros8(uint8(nibble)) - 4
		return count
	}
	return count
}

// ValidateCreatedAt enforces spec.md §4.1 validate-created-at: ts must be
// within [now-lower, now+upper] inclusive.
func ValidateCreatedAt(ts int64, lower, upper int64) (ok bool, reasonStr string) {
	now := time.Now().Unix()
	if now-ts > lower {
		return false, reason.Error.F("event is too old")
	}
	if ts-now > upper {
		return false, reason.Error.F("event is too far in the future")
	}
	return true, ""
}

// ValidateAuthEvent runs spec.md §4.1 validate-auth-event: the event must
// first pass Validate, then be kind 22242, within 600s of now, carry a
// matching "challenge" tag and a "relay" tag whose normalized value matches
// the normalized relayURL.
func (e *E) ValidateAuthEvent(minDifficulty, maxTags int, challenge, relayURL string) (ok bool, reasonStr string) {
	if ok, reasonStr = e.Validate(minDifficulty, maxTags); !ok {
		return
	}
	if e.Kind != 22242 {
		return false, reason.Invalid.F("auth event must be kind 22242")
	}
	now := time.Now().Unix()
	delta := e.CreatedAt - now
	if delta < -600 || delta > 600 {
		return false, reason.Invalid.F("auth event created_at out of range")
	}
	ch := e.Tags.GetFirst("challenge")
	if ch == nil || ch.Value() != challenge {
		return false, reason.Invalid.F("auth event challenge mismatch")
	}
	rel := e.Tags.GetFirst("relay")
	if rel == nil || normalizeRelayURL(rel.Value()) != normalizeRelayURL(relayURL) {
		return false, reason.Invalid.F("auth event relay mismatch")
	}
	return true, ""
}

func normalizeRelayURL(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	return strings.TrimSuffix(u, "/")
}
