// Package reason holds the NIP-01 standardized OK/CLOSED prefixes and the
// formatting helper used to build the machine-parseable reason strings spec.md
// §4 and §7 require on every negative response.
package reason

import "fmt"

// Prefix is one of the standardized reason-string prefixes.
type Prefix string

const (
	Duplicate    Prefix = "duplicate"
	PoW          Prefix = "pow"
	Blocked      Prefix = "blocked"
	RateLimited  Prefix = "rate-limited"
	Invalid      Prefix = "invalid"
	Error        Prefix = "error"
	AuthRequired Prefix = "auth-required"
	Restricted   Prefix = "restricted"
	Unsupported  Prefix = "unsupported"
	Closed       Prefix = "closed"
)

// F formats msg (with optional args, as fmt.Sprintf) with the prefix and a
// colon, e.g. "pow: difficulty 4 is less than 8".
func (p Prefix) F(format string, args ...any) string {
	return string(p) + ": " + fmt.Sprintf(format, args...)
}
