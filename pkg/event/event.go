// Package event defines the canonical in-memory shape of a Nostr event and
// the kind-class helpers used throughout the relay.
package event

import (
	"strconv"

	"nostrd.dev/pkg/kind"
	"nostrd.dev/pkg/tag"
)

// E is a Nostr event, as described in spec.md §3.
type E struct {
	ID        string `json:"id"`
	Pubkey    string `json:"pubkey"`
	CreatedAt int64  `json:"created_at"`
	Kind      uint16 `json:"kind"`
	Tags      tag.S  `json:"tags"`
	Content   string `json:"content"`
	Sig       string `json:"sig"`
}

// IsReplaceable, IsAddressable and IsEphemeral classify the event by its
// Kind, per spec.md §3.
func (e *E) IsReplaceable() bool { return kind.IsReplaceable(e.Kind) }
func (e *E) IsAddressable() bool { return kind.IsAddressable(e.Kind) }
func (e *E) IsEphemeral() bool   { return kind.IsEphemeral(e.Kind) }

// DTag returns the first value of the first "d" tag, defaulting to "",
// which together with (Kind, Pubkey) identifies an addressable event.
func (e *E) DTag() string {
	if t := e.Tags.GetFirst("d"); t != nil {
		return t.Value()
	}
	return ""
}

// Address returns the "kind:pubkey:d" address string used by deletion
// processing and the addressable-replacement rule.
func (e *E) Address() string {
	return AddressOf(e.Kind, e.Pubkey, e.DTag())
}

// AddressOf builds the "kind:pubkey:d" address string from its parts.
func AddressOf(k uint16, pubkey, d string) string {
	return strconv.Itoa(int(k)) + ":" + pubkey + ":" + d
}

// VisibleTo reports whether e may be delivered to a connection
// authenticated as pubkey (empty when unauthenticated). Privileged kinds
// (direct messages, seals, gift wraps, application-private data) are only
// visible to their author or a pubkey named in a "p" tag; every other kind
// is visible unconditionally.
func (e *E) VisibleTo(pubkey string) bool {
	if !kind.IsPrivileged(e.Kind) {
		return true
	}
	if pubkey == "" {
		return false
	}
	if pubkey == e.Pubkey {
		return true
	}
	for _, v := range e.Tags.Values("p") {
		if v == pubkey {
			return true
		}
	}
	return false
}
