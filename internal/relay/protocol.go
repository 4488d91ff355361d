package relay

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nostr-rly/relay/internal/bus"
	"github.com/nostr-rly/relay/internal/group"
	"github.com/nostr-rly/relay/internal/nip29"
	"github.com/nostr-rly/relay/internal/nostr"
	"github.com/nostr-rly/relay/internal/store"
	"github.com/nostr-rly/relay/internal/wire"
)

// KindValidator is an optional policy hook invoked after verification and
// before storage for kinds it recognizes. It returns false to reject the
// event. Kind-specific validation beyond signature (e.g. the music-event
// tag requirements) is a policy layer distinct from the core pipeline, so
// it plugs in here rather than being hardcoded into Handler.
type KindValidator func(kind int, tags [][]string) (applies bool, valid bool)

// Handler decodes inbound frames, dispatches to the event pipeline and
// NIP-29 side effects, and formats outbound frames.
type Handler struct {
	Store     store.Store
	Groups    group.Store
	Bus       *bus.Bus
	Log       zerolog.Logger
	Validator KindValidator
}

// HandleMessage parses one inbound WS text frame and returns zero or more
// outbound frames, in the order they must be sent.
func (h *Handler) HandleMessage(raw []byte, subs *SubscriptionManager) []string {
	var frame []json.RawMessage
	if err := json.Unmarshal(raw, &frame); err != nil || len(frame) == 0 {
		return []string{wire.Notice("invalid message: not a JSON array")}
	}

	var msgType string
	if err := json.Unmarshal(frame[0], &msgType); err != nil {
		return []string{wire.Notice("invalid message: missing message type")}
	}

	switch msgType {
	case "EVENT":
		return h.handleEvent(frame)
	case "REQ":
		return h.handleReq(frame, subs)
	case "CLOSE":
		return h.handleClose(frame, subs)
	case "AUTH":
		// AUTH frames are accepted and ignored; no operation is gated on
		// authentication.
		return nil
	default:
		return []string{wire.Notice(fmt.Sprintf("unknown message type: %s", msgType))}
	}
}

func (h *Handler) handleEvent(frame []json.RawMessage) []string {
	if len(frame) < 2 {
		return []string{wire.Notice("invalid EVENT: missing event payload")}
	}

	var e nostr.Event
	if err := json.Unmarshal(frame[1], &e); err != nil {
		return []string{wire.OK("<unknown>", false, "invalid event")}
	}

	if !nostr.Verify(&e) {
		return []string{wire.OK(e.ID, false, "invalid: signature verification failed")}
	}

	if h.Validator != nil {
		if applies, valid := h.Validator(e.Kind, e.Tags); applies && !valid {
			return []string{wire.OK(e.ID, false, "invalid event")}
		}
	}

	if responses := h.dispatchNIP29(&e); responses != nil {
		return responses
	}

	return h.storeAndBroadcast(&e)
}

// dispatchNIP29 runs the matching kind:9xxx handler if e.Kind is a NIP-29
// management kind, then stores and broadcasts on success, returning the
// handler's frames. It returns nil for every other kind so the caller falls
// through to the regular store-and-broadcast path.
func (h *Handler) dispatchNIP29(e *nostr.Event) []string {
	var responses []string
	switch e.Kind {
	case 9000:
		responses = nip29.HandlePutUser(h.Groups, e)
	case 9001:
		responses = nip29.HandleRemoveUser(h.Groups, e)
	case 9007:
		responses = nip29.HandleCreateGroup(h.Groups, e)
	case 9008:
		responses = nip29.HandleDeleteGroup(h.Groups, e)
	case 9021:
		responses = nip29.HandleJoinRequest(h.Groups, e)
	case 9022:
		responses = nip29.HandleLeave(h.Groups, e)
	default:
		return nil
	}

	if !wasAccepted(responses) {
		return responses
	}

	outcome, err := h.Store.Store(e)
	if err != nil {
		h.Log.Error().Err(err).Str("event_id", e.ID).Int("kind", e.Kind).Msg("store nip-29 event failed")
		return responses
	}
	if outcome == store.Inserted {
		h.Bus.Publish(e)
	}
	return responses
}

// wasAccepted inspects the last frame a handler produced for a positive OK
// (["OK", id, true, ...]); authorization failures must not store/broadcast.
func wasAccepted(frames []string) bool {
	if len(frames) == 0 {
		return false
	}
	var parsed []json.RawMessage
	if err := json.Unmarshal([]byte(frames[len(frames)-1]), &parsed); err != nil || len(parsed) < 3 {
		return false
	}
	var accepted bool
	if err := json.Unmarshal(parsed[2], &accepted); err != nil {
		return false
	}
	return accepted
}

func (h *Handler) storeAndBroadcast(e *nostr.Event) []string {
	outcome, err := h.Store.Store(e)
	if err != nil {
		h.Log.Error().Err(err).Str("event_id", e.ID).Msg("store event failed")
		return []string{wire.OK(e.ID, false, fmt.Sprintf("error: %s", err))}
	}

	switch outcome {
	case store.Duplicate:
		return []string{wire.OK(e.ID, true, "duplicate:")}
	default:
		h.Bus.Publish(e)
		return []string{wire.OK(e.ID, true, "")}
	}
}

func (h *Handler) handleReq(frame []json.RawMessage, subs *SubscriptionManager) []string {
	if len(frame) < 3 {
		return []string{wire.Notice("invalid REQ: missing subscription id or filter")}
	}

	var subID string
	if err := json.Unmarshal(frame[1], &subID); err != nil {
		return []string{wire.Notice("invalid REQ: subscription id must be a string")}
	}

	filter, err := nostr.ParseFilter(frame[2])
	if err != nil {
		return []string{wire.Notice("invalid REQ: malformed filter")}
	}

	subs.Add(subID, filter)

	events, err := h.Store.Query(filter)
	if err != nil {
		h.Log.Error().Err(err).Str("sub_id", subID).Msg("query failed")
		return []string{wire.EOSE(subID)}
	}

	responses := make([]string, 0, len(events)+1)
	for _, e := range events {
		responses = append(responses, wire.Event(subID, e))
	}
	responses = append(responses, wire.EOSE(subID))
	return responses
}

func (h *Handler) handleClose(frame []json.RawMessage, subs *SubscriptionManager) []string {
	if len(frame) < 2 {
		return []string{wire.Notice("invalid CLOSE: missing subscription id")}
	}

	var subID string
	if err := json.Unmarshal(frame[1], &subID); err != nil {
		return []string{wire.Notice("invalid CLOSE: subscription id must be a string")}
	}

	subs.Remove(subID)
	return []string{wire.Closed(subID, "")}
}
