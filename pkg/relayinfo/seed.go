package relayinfo

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Seed is the on-disk shape of the NIP-11 static identity fields referenced
// by spec.md §6's configuration contract. The limitation tunables the relay
// actually enforces live in app/config.C and are threaded into Document
// directly by the caller, so the advertised document can never drift from
// runtime behavior.
type Seed struct {
	Name            string `toml:"name"`
	Description     string `toml:"description"`
	PubKey          string `toml:"pubkey"`
	Contact         string `toml:"contact"`
	PaymentRequired bool   `toml:"payment_required"`
}

// DefaultSeed returns the identity fields a fresh install runs with, before
// any file on disk overrides them.
func DefaultSeed() Seed {
	return Seed{
		Name:        "nostrd",
		Description: "a nostrd relay",
	}
}

// LoadSeed reads a Seed from a TOML file at path, falling back to
// DefaultSeed for any field the file doesn't mention by starting from it.
func LoadSeed(path string) (Seed, error) {
	seed := DefaultSeed()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return seed, nil
	}
	if _, err := toml.DecodeFile(path, &seed); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

// Document renders an info document from a seed, software/version strings
// reported by the running binary, and the limitation tunables the caller
// actually enforces. limits.PaymentRequired is overwritten from the seed,
// since payment status isn't one of app/config.C's enforced values.
func (s Seed) Document(software, version string, limits Limits) *T {
	limits.PaymentRequired = s.PaymentRequired
	return &T{
		Name:          s.Name,
		Description:   s.Description,
		PubKey:        s.PubKey,
		Contact:       s.Contact,
		SupportedNIPs: SupportedNIPs,
		Software:      software,
		Version:       version,
		Limitation:    limits,
	}
}
