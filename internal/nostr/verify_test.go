package nostr

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func signedTestEvent(t *testing.T) *Event {
	t.Helper()
	id, err := NewIdentity("", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewIdentity: %v", err)
	}
	e, err := id.SignEvent(1, [][]string{{"t", "test"}}, "hello")
	if err != nil {
		t.Fatalf("SignEvent: %v", err)
	}
	return e
}

func TestVerify_Valid(t *testing.T) {
	e := signedTestEvent(t)
	if !Verify(e) {
		t.Error("Verify() = false for a freshly signed event")
	}
}

func TestVerify_TamperedContent(t *testing.T) {
	e := signedTestEvent(t)
	e.Content = "tampered"
	if Verify(e) {
		t.Error("Verify() = true for an event whose content changed after signing")
	}
}

func TestVerify_TamperedID(t *testing.T) {
	e := signedTestEvent(t)
	e.ID = strings.Repeat("0", 64)
	if Verify(e) {
		t.Error("Verify() = true for a mismatched id")
	}
}

func TestVerify_MalformedFields(t *testing.T) {
	base := signedTestEvent(t)

	tests := []struct {
		name string
		mod  func(*Event)
	}{
		{"short id", func(e *Event) { e.ID = "abcd" }},
		{"non-hex id", func(e *Event) { e.ID = strings.Repeat("z", 64) }},
		{"short sig", func(e *Event) { e.Sig = "abcd" }},
		{"short pubkey", func(e *Event) { e.PubKey = "abcd" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := *base
			tt.mod(&e)
			if Verify(&e) {
				t.Errorf("Verify() = true, want false for %s", tt.name)
			}
		})
	}
}
