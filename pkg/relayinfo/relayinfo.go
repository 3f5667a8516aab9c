// Package relayinfo implements the NIP-11 relay information document of
// spec.md §6: the JSON object returned to a GET request carrying
// Accept: application/nostr+json, including the limitation tunables the
// relay enforces at runtime.
package relayinfo

// Limits mirrors the tunables spec.md §6 requires in the limitation
// sub-object — these are the values the relay actually enforces, not just
// advertised constants.
type Limits struct {
	MaxMessageLength    int   `json:"max_message_length"`
	MaxSubscriptions    int   `json:"max_subscriptions"`
	MaxFilters          int   `json:"max_filters"`
	MaxLimit            int   `json:"max_limit"`
	MaxSubidLength      int   `json:"max_subid_length"`
	MinPowDifficulty    int   `json:"min_pow_difficulty"`
	AuthRequired        bool  `json:"auth_required"`
	PaymentRequired     bool  `json:"payment_required"`
	RestrictedWrites    bool  `json:"restricted_writes"`
	CreatedAtLowerLimit int64 `json:"created_at_lower_limit"`
	CreatedAtUpperLimit int64 `json:"created_at_upper_limit"`
}

// T is the NIP-11 relay information document.
type T struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	PubKey        string   `json:"pubkey"`
	Contact       string   `json:"contact"`
	SupportedNIPs []int    `json:"supported_nips"`
	Software      string   `json:"software"`
	Version       string   `json:"version"`
	Limitation    Limits   `json:"limitation"`
}

// SupportedNIPs is the fixed list of NIPs this relay implements, per
// spec.md's scope: NIP-01 (core protocol), NIP-09 (event deletion), NIP-11
// (this document), NIP-40 (expiration), NIP-42 (authentication), NIP-45
// (COUNT), NIP-50 (search), NIP-70 (protected events), NIP-77
// (set-reconciliation negentropy sync).
var SupportedNIPs = []int{1, 9, 11, 40, 42, 45, 50, 70, 77}
