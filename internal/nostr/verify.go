package nostr

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// Verify reports whether event.id is the SHA-256 of the event's canonical
// serialization and event.sig is a valid Schnorr signature over that id
// under the x-only pubkey. It is pure: no side effects, no storage access.
func Verify(e *Event) bool {
	idBytes, err := hex.DecodeString(e.ID)
	if err != nil || len(idBytes) != 32 {
		return false
	}

	sigBytes, err := hex.DecodeString(e.Sig)
	if err != nil || len(sigBytes) != 64 {
		return false
	}

	pubKeyBytes, err := hex.DecodeString(e.PubKey)
	if err != nil || len(pubKeyBytes) != 32 {
		return false
	}

	computedID, err := ComputeID(e)
	if err != nil || computedID != e.ID {
		return false
	}

	pubKey, err := schnorr.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false
	}

	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return false
	}

	return sig.Verify(idBytes, pubKey)
}
