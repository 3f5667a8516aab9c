package event

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"nostrd.dev/pkg/tag"
)

// testKeypair returns a deterministic secp256k1 private key and its x-only
// hex-encoded public key, as used by Nostr.
func testKeypair(t *testing.T) (*btcec.PrivateKey, string) {
	t.Helper()
	seed := make([]byte, 32)
	seed[31] = 1
	priv, pub := btcec.PrivKeyFromBytes(seed)
	return priv, hex.EncodeToString(schnorr.SerializePubKey(pub))
}

// signedEvent builds e's canonical id and a real schnorr signature over it,
// mirroring what a well-behaved client does.
func signedEvent(t *testing.T, priv *btcec.PrivateKey, e *E) *E {
	t.Helper()
	id, err := e.ComputeID()
	if err != nil {
		t.Fatalf("compute id: %v", err)
	}
	e.ID = id
	idBytes, err := hex.DecodeString(id)
	if err != nil {
		t.Fatalf("decode id: %v", err)
	}
	sig, err := schnorr.Sign(priv, idBytes)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	e.Sig = hex.EncodeToString(sig.Serialize())
	return e
}

func baseEvent(pubkey string) *E {
	return &E{
		Pubkey:    pubkey,
		CreatedAt: 1700000000,
		Kind:      1,
		Content:   "hello world",
		Tags:      tag.S{{"p", pubkey}},
	}
}

func TestValidateAcceptsGenuineEvent(t *testing.T) {
	priv, pub := testKeypair(t)
	e := signedEvent(t, priv, baseEvent(pub))
	if ok, reasonStr := e.Validate(0, 2000); !ok {
		t.Fatalf("expected valid event, got reason %q", reasonStr)
	}
}

// TestValidateRejectsBodyIDMismatch is the replay attack this check closes:
// a genuine (id, sig) pair is replayed alongside attacker-chosen content, so
// the id no longer matches the canonical serialization of the body it's
// attached to.
func TestValidateRejectsBodyIDMismatch(t *testing.T) {
	priv, pub := testKeypair(t)
	e := signedEvent(t, priv, baseEvent(pub))
	e.Content = "attacker-controlled content"
	if ok, reasonStr := e.Validate(0, 2000); ok {
		t.Fatalf("expected rejection of tampered body, got ok with reason %q", reasonStr)
	}
}

func TestValidateRejectsBadSignature(t *testing.T) {
	priv, pub := testKeypair(t)
	e := signedEvent(t, priv, baseEvent(pub))
	// Flip a byte of the signature without touching the id.
	sig, err := hex.DecodeString(e.Sig)
	if err != nil {
		t.Fatalf("decode sig: %v", err)
	}
	sig[0] ^= 0xff
	e.Sig = hex.EncodeToString(sig)
	if ok, reasonStr := e.Validate(0, 2000); ok {
		t.Fatalf("expected rejection of forged signature, got ok with reason %q", reasonStr)
	}
}

func TestValidateRejectsInsufficientPoW(t *testing.T) {
	priv, pub := testKeypair(t)
	e := signedEvent(t, priv, baseEvent(pub))
	if ok, reasonStr := e.Validate(256, 2000); ok {
		t.Fatalf("expected rejection on insufficient PoW, got ok with reason %q", reasonStr)
	}
}

func TestValidateRejectsTooManyTags(t *testing.T) {
	priv, pub := testKeypair(t)
	ev := baseEvent(pub)
	for i := 0; i < 5; i++ {
		ev.Tags = append(ev.Tags, tag.T{"e", pub})
	}
	e := signedEvent(t, priv, ev)
	if ok, reasonStr := e.Validate(0, 3); ok {
		t.Fatalf("expected rejection on tag-count ceiling, got ok with reason %q", reasonStr)
	}
}

func TestValidateRejectsMalformedSchema(t *testing.T) {
	e := &E{ID: "not-hex", Pubkey: "also-not-hex", Sig: "short"}
	if ok, reasonStr := e.Validate(0, 2000); ok {
		t.Fatalf("expected schema rejection, got ok with reason %q", reasonStr)
	}
}
