package event

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"nostrd.dev/pkg/tag"
)

// ToCanonical renders the canonical serialization NIP-01 defines for the id
// hash: [0, pubkey, created_at, kind, tags, content], minified, with no
// field reordering or escaping beyond what the JSON wire format requires.
func (e *E) ToCanonical() ([]byte, error) {
	tags := e.Tags
	if tags == nil {
		tags = tag.S{}
	}
	arr := []any{0, e.Pubkey, e.CreatedAt, e.Kind, tags, e.Content}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(arr); err != nil {
		return nil, err
	}
	// json.Encoder.Encode appends a trailing newline; canonical form must not
	// carry it.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ComputeID returns the lowercase hex SHA-256 hash of the event's canonical
// serialization.
func (e *E) ComputeID() (string, error) {
	b, err := e.ToCanonical()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
