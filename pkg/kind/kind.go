// Package kind classifies Nostr event kinds into the four storage classes
// the relay treats distinctly: replaceable, addressable, ephemeral and
// regular.
package kind

// Well-known kinds referenced by the protocol layer.
const (
	Metadata       uint16 = 0
	Text           uint16 = 1
	FollowList     uint16 = 3
	EventDeletion  uint16 = 5
	EncryptedDM    uint16 = 4
	Seal           uint16 = 13
	GiftWrap       uint16 = 1059
	Auth           uint16 = 22242
	PrivateDM      uint16 = 14
	ApplicationData uint16 = 30078
)

// IsReplaceable reports whether k belongs to the replaceable class: kind 0,
// kind 3, or 10000 <= k < 20000.
func IsReplaceable(k uint16) bool {
	return k == Metadata || k == FollowList || (k >= 10000 && k < 20000)
}

// IsAddressable reports whether k belongs to the addressable
// (parameterized-replaceable) class: 30000 <= k < 40000.
func IsAddressable(k uint16) bool {
	return k >= 30000 && k < 40000
}

// IsEphemeral reports whether k belongs to the ephemeral class: 20000 <= k <
// 30000. Ephemeral events are validated and broadcast but never persisted.
func IsEphemeral(k uint16) bool {
	return k >= 20000 && k < 30000
}

// IsRegular reports whether k is none of replaceable, addressable or
// ephemeral, meaning it is persisted and never replaced.
func IsRegular(k uint16) bool {
	return !IsReplaceable(k) && !IsAddressable(k) && !IsEphemeral(k)
}

// privileged is the set of kinds whose content is visible only to the
// author and the pubkeys named in their "p" tags. This is not part of the
// base spec's persistence model but is carried from the relay this project
// is patterned on (see SPEC_FULL.md §C) because it changes delivery, not
// storage.
var privileged = map[uint16]struct{}{
	EncryptedDM:     {},
	Seal:            {},
	GiftWrap:        {},
	PrivateDM:       {},
	ApplicationData: {},
}

// IsPrivileged reports whether k is a kind whose events should only be
// delivered to their author or a named recipient.
func IsPrivileged(k uint16) bool {
	_, ok := privileged[k]
	return ok
}
