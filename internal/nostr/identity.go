package nostr

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/rs/zerolog"
)

// Identity is the relay's process-wide signing keypair, used only to sign
// group metadata generator output (kind 39000/39001/39002). It never
// mutates after construction and is safe to share across goroutines.
type Identity struct {
	PubKey     string
	privateKey *btcec.PrivateKey
}

// NewIdentity loads the relay identity from a hex-encoded secret key, or
// generates and logs a fresh ephemeral one if secretKeyHex is empty.
func NewIdentity(secretKeyHex string, log zerolog.Logger) (*Identity, error) {
	var priv *btcec.PrivateKey

	if trimmed := strings.TrimSpace(secretKeyHex); trimmed != "" {
		keyBytes, err := hex.DecodeString(trimmed)
		if err != nil {
			return nil, fmt.Errorf("relay secret key: invalid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return nil, fmt.Errorf("relay secret key: want 32 bytes, got %d", len(keyBytes))
		}
		priv, _ = btcec.PrivKeyFromBytes(keyBytes)
	} else {
		var err error
		priv, err = btcec.NewPrivateKey()
		if err != nil {
			return nil, fmt.Errorf("generate ephemeral relay key: %w", err)
		}
		log.Warn().
			Str("secret_key", hex.EncodeToString(priv.Serialize())).
			Msg("no RELAY_SECRET_KEY configured; generated ephemeral relay identity (non-production)")
	}

	pubKey := hex.EncodeToString(schnorr.SerializePubKey(priv.PubKey()))
	log.Info().Str("pubkey", pubKey).Msg("relay identity loaded")

	return &Identity{PubKey: pubKey, privateKey: priv}, nil
}

// SignEvent builds and signs a complete event under the relay's identity,
// computing created_at, id, and sig. Signing uses fresh auxiliary
// randomness per call, matching the verify path's canonical serialization.
func (id *Identity) SignEvent(kind int, tags [][]string, content string) (*Event, error) {
	e := &Event{
		PubKey:    id.PubKey,
		CreatedAt: time.Now().Unix(),
		Kind:      kind,
		Tags:      tags,
		Content:   content,
	}

	eventID, err := ComputeID(e)
	if err != nil {
		return nil, fmt.Errorf("compute event id: %w", err)
	}
	e.ID = eventID

	idBytes, err := hex.DecodeString(eventID)
	if err != nil {
		return nil, err
	}

	var auxRand [32]byte
	if _, err := rand.Read(auxRand[:]); err != nil {
		return nil, fmt.Errorf("read auxiliary randomness: %w", err)
	}

	sig, err := schnorr.Sign(id.privateKey, idBytes, schnorr.CustomNonce(auxRand))
	if err != nil {
		return nil, fmt.Errorf("schnorr sign: %w", err)
	}
	e.Sig = hex.EncodeToString(sig.Serialize())

	return e, nil
}
