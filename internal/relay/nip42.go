package relay

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/nostr-rly/relay/internal/nostr"
)

// GenerateChallenge produces a fresh NIP-42 AUTH challenge. The core
// pipeline never requires one; a connection loop may send
// ["AUTH", challenge] and later verify a kind:22242 response on its own
// schedule.
func GenerateChallenge() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

// VerifyAuthEvent checks a kind:22242 AUTH response against the challenge
// issued and the relay's own URL, per NIP-42. It never gates any operation
// in the core pipeline; callers decide what, if anything, to do with the
// result.
func VerifyAuthEvent(e *nostr.Event, challenge, relayURL string) bool {
	if e.Kind != 22242 {
		return false
	}

	hasRelay := false
	hasChallenge := false
	for _, tag := range e.Tags {
		if len(tag) >= 2 && tag[0] == "relay" && tag[1] == relayURL {
			hasRelay = true
		}
		if len(tag) >= 2 && tag[0] == "challenge" && tag[1] == challenge {
			hasChallenge = true
		}
	}

	return hasRelay && hasChallenge && nostr.Verify(e)
}
