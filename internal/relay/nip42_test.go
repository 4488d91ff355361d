package relay

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/nostr-rly/relay/internal/nostr"
)

func TestGenerateChallenge_Unique(t *testing.T) {
	c1, err := GenerateChallenge()
	if err != nil {
		t.Fatalf("GenerateChallenge: %v", err)
	}
	c2, err := GenerateChallenge()
	if err != nil {
		t.Fatalf("GenerateChallenge: %v", err)
	}
	if c1 == c2 {
		t.Error("GenerateChallenge should produce distinct challenges")
	}
	if len(c1) != 64 {
		t.Errorf("len(challenge) = %d, want 64 hex chars", len(c1))
	}
}

func TestVerifyAuthEvent(t *testing.T) {
	id, err := nostr.NewIdentity("", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewIdentity: %v", err)
	}

	challenge := "chal123"
	relayURL := "wss://relay.example/"

	e, err := id.SignEvent(22242, [][]string{{"relay", relayURL}, {"challenge", challenge}}, "")
	if err != nil {
		t.Fatalf("SignEvent: %v", err)
	}

	if !VerifyAuthEvent(e, challenge, relayURL) {
		t.Error("VerifyAuthEvent should accept a correctly tagged auth event")
	}
	if VerifyAuthEvent(e, "wrong-challenge", relayURL) {
		t.Error("VerifyAuthEvent should reject a mismatched challenge")
	}
	if VerifyAuthEvent(e, challenge, "wss://other.example/") {
		t.Error("VerifyAuthEvent should reject a mismatched relay url")
	}
}

func TestVerifyAuthEvent_WrongKind(t *testing.T) {
	id, err := nostr.NewIdentity("", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewIdentity: %v", err)
	}
	e, err := id.SignEvent(1, nil, "")
	if err != nil {
		t.Fatalf("SignEvent: %v", err)
	}
	if VerifyAuthEvent(e, "chal", "wss://relay.example/") {
		t.Error("VerifyAuthEvent should reject non-22242 kinds")
	}
}
