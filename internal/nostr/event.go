// Package nostr implements the wire event model, canonical serialization,
// Schnorr verification, filter matching, and the relay's signing identity.
package nostr

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Event is the signed atomic message described by NIP-01.
type Event struct {
	ID        string     `json:"id"`
	PubKey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig"`
}

// GetTagValue returns the second element of the first tag whose first
// element equals name, or "" with ok=false if no such tag exists.
func (e *Event) GetTagValue(name string) (string, bool) {
	for _, tag := range e.Tags {
		if len(tag) >= 1 && tag[0] == name {
			if len(tag) >= 2 {
				return tag[1], true
			}
			return "", false
		}
	}
	return "", false
}

// TagValues returns the second element of every tag whose first element
// equals name, in tag order.
func (e *Event) TagValues(name string) []string {
	var out []string
	for _, tag := range e.Tags {
		if len(tag) >= 2 && tag[0] == name {
			out = append(out, tag[1])
		}
	}
	return out
}

// CanonicalSerialize produces the byte-exact NIP-01 preimage for hashing:
// the compact JSON encoding of [0, pubkey, created_at, kind, tags, content].
// This is the single source of truth for event id computation; both the
// verify path and the signing path must call it.
func CanonicalSerialize(e *Event) ([]byte, error) {
	tags := e.Tags
	if tags == nil {
		tags = [][]string{}
	}
	arr := []interface{}{0, e.PubKey, e.CreatedAt, e.Kind, tags, e.Content}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(arr); err != nil {
		return nil, err
	}

	// json.Encoder always appends a trailing newline; the canonical form
	// does not have one.
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out, nil
}

// ComputeID returns the lowercase hex SHA-256 of the event's canonical
// serialization.
func ComputeID(e *Event) (string, error) {
	ser, err := CanonicalSerialize(e)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(ser)
	return hex.EncodeToString(sum[:]), nil
}
