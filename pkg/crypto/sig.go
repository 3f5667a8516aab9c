// Package crypto wraps the external cryptographic primitives the protocol
// layer treats as a contract (spec.md §1, §6): schnorr/secp256k1 signature
// verification over the event id.
package crypto

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// VerifySignature verifies that sigHex is a valid BIP-340 schnorr signature
// over idHex by the holder of pubkeyHex (an x-only secp256k1 public key, as
// used by Nostr).
func VerifySignature(idHex, pubkeyHex, sigHex string) (bool, error) {
	idBytes, err := hex.DecodeString(idHex)
	if err != nil {
		return false, fmt.Errorf("invalid id hex: %w", err)
	}
	if len(idBytes) != 32 {
		return false, fmt.Errorf("id must be 32 bytes, got %d", len(idBytes))
	}
	pubBytes, err := hex.DecodeString(pubkeyHex)
	if err != nil {
		return false, fmt.Errorf("invalid pubkey hex: %w", err)
	}
	pub, err := schnorr.ParsePubKey(pubBytes)
	if err != nil {
		return false, fmt.Errorf("invalid pubkey: %w", err)
	}
	sigBytes, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, fmt.Errorf("invalid signature hex: %w", err)
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return false, fmt.Errorf("invalid signature: %w", err)
	}
	return sig.Verify(idBytes, pub), nil
}
