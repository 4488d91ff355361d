// Package wire builds the JSON-array frames the relay sends over the wire,
// kept in one place so every producer, the protocol handler and the NIP-29
// handlers alike, encodes them identically.
package wire

import (
	"encoding/json"

	"github.com/nostr-rly/relay/internal/nostr"
)

func encode(frame []interface{}) string {
	b, err := json.Marshal(frame)
	if err != nil {
		// Every element here is a string, bool, or an Event that already
		// round-tripped through json.Unmarshal; marshal cannot fail.
		return `["NOTICE","internal error encoding frame"]`
	}
	return string(b)
}

// OK builds ["OK", id, accepted, message].
func OK(id string, accepted bool, message string) string {
	return encode([]interface{}{"OK", id, accepted, message})
}

// Event builds ["EVENT", sub_id, event].
func Event(subID string, e *nostr.Event) string {
	return encode([]interface{}{"EVENT", subID, e})
}

// EOSE builds ["EOSE", sub_id].
func EOSE(subID string) string {
	return encode([]interface{}{"EOSE", subID})
}

// Closed builds ["CLOSED", sub_id, message].
func Closed(subID, message string) string {
	return encode([]interface{}{"CLOSED", subID, message})
}

// Notice builds ["NOTICE", text].
func Notice(text string) string {
	return encode([]interface{}{"NOTICE", text})
}

// Auth builds ["AUTH", challenge].
func Auth(challenge string) string {
	return encode([]interface{}{"AUTH", challenge})
}
