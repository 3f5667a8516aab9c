package envelopes

import (
	"encoding/json"
	"fmt"

	"nostrd.dev/pkg/event"
	"nostrd.dev/pkg/filter"
)

// EventEnvelope is the client's inbound EVENT message.
type EventEnvelope struct {
	Event *event.E
}

// ParseEvent decodes an EVENT envelope's remainder: a single event object.
func ParseEvent(rem []json.RawMessage) (*EventEnvelope, error) {
	if len(rem) != 1 {
		return nil, fmt.Errorf("EVENT: expected 1 element, got %d", len(rem))
	}
	e := new(event.E)
	if err := json.Unmarshal(rem[0], e); err != nil {
		return nil, fmt.Errorf("EVENT: %w", err)
	}
	return &EventEnvelope{Event: e}, nil
}

// ReqEnvelope is the client's inbound REQ message: a subscription id
// followed by one or more filters.
type ReqEnvelope struct {
	SubID   string
	Filters filter.S
}

// ParseReq decodes a REQ envelope's remainder.
func ParseReq(rem []json.RawMessage) (*ReqEnvelope, error) {
	if len(rem) < 2 {
		return nil, fmt.Errorf("REQ: expected subscription id and at least one filter")
	}
	var subID string
	if err := json.Unmarshal(rem[0], &subID); err != nil {
		return nil, fmt.Errorf("REQ: subscription id: %w", err)
	}
	fs := make(filter.S, 0, len(rem)-1)
	for _, raw := range rem[1:] {
		f := new(filter.F)
		if err := json.Unmarshal(raw, f); err != nil {
			return nil, fmt.Errorf("REQ: filter: %w", err)
		}
		fs = append(fs, f)
	}
	return &ReqEnvelope{SubID: subID, Filters: fs}, nil
}

// CountEnvelope is the client's inbound COUNT message: identical shape to
// REQ, but answered with a count instead of a stream of events.
type CountEnvelope struct {
	SubID   string
	Filters filter.S
}

// ParseCount decodes a COUNT envelope's remainder.
func ParseCount(rem []json.RawMessage) (*CountEnvelope, error) {
	r, err := ParseReq(rem)
	if err != nil {
		return nil, fmt.Errorf("COUNT: %w", err)
	}
	return &CountEnvelope{SubID: r.SubID, Filters: r.Filters}, nil
}

// AuthEnvelope is the client's inbound AUTH message: a signed kind-22242
// event responding to the relay's challenge.
type AuthEnvelope struct {
	Event *event.E
}

// ParseAuth decodes an AUTH envelope's remainder.
func ParseAuth(rem []json.RawMessage) (*AuthEnvelope, error) {
	if len(rem) != 1 {
		return nil, fmt.Errorf("AUTH: expected 1 element, got %d", len(rem))
	}
	e := new(event.E)
	if err := json.Unmarshal(rem[0], e); err != nil {
		return nil, fmt.Errorf("AUTH: %w", err)
	}
	return &AuthEnvelope{Event: e}, nil
}

// CloseEnvelope is the client's inbound CLOSE message.
type CloseEnvelope struct {
	SubID string
}

// ParseClose decodes a CLOSE envelope's remainder.
func ParseClose(rem []json.RawMessage) (*CloseEnvelope, error) {
	if len(rem) != 1 {
		return nil, fmt.Errorf("CLOSE: expected 1 element, got %d", len(rem))
	}
	var subID string
	if err := json.Unmarshal(rem[0], &subID); err != nil {
		return nil, fmt.Errorf("CLOSE: %w", err)
	}
	return &CloseEnvelope{SubID: subID}, nil
}

// NegOpenEnvelope is the client's inbound NEG-OPEN message: a subscription
// id, a filter that bounds the snapshot, and an initial hex codec message.
type NegOpenEnvelope struct {
	SubID   string
	Filter  *filter.F
	Initial string
}

// ParseNegOpen decodes a NEG-OPEN envelope's remainder.
func ParseNegOpen(rem []json.RawMessage) (*NegOpenEnvelope, error) {
	if len(rem) != 3 {
		return nil, fmt.Errorf("NEG-OPEN: expected 3 elements, got %d", len(rem))
	}
	var subID string
	if err := json.Unmarshal(rem[0], &subID); err != nil {
		return nil, fmt.Errorf("NEG-OPEN: subscription id: %w", err)
	}
	f := new(filter.F)
	if err := json.Unmarshal(rem[1], f); err != nil {
		return nil, fmt.Errorf("NEG-OPEN: filter: %w", err)
	}
	var initial string
	if err := json.Unmarshal(rem[2], &initial); err != nil {
		return nil, fmt.Errorf("NEG-OPEN: initial message: %w", err)
	}
	return &NegOpenEnvelope{SubID: subID, Filter: f, Initial: initial}, nil
}

// NegMsgEnvelope is the client's inbound NEG-MSG message: a subscription id
// and a hex codec message.
type NegMsgEnvelope struct {
	SubID   string
	Message string
}

// ParseNegMsg decodes a NEG-MSG envelope's remainder.
func ParseNegMsg(rem []json.RawMessage) (*NegMsgEnvelope, error) {
	if len(rem) != 2 {
		return nil, fmt.Errorf("NEG-MSG: expected 2 elements, got %d", len(rem))
	}
	var subID, msg string
	if err := json.Unmarshal(rem[0], &subID); err != nil {
		return nil, fmt.Errorf("NEG-MSG: subscription id: %w", err)
	}
	if err := json.Unmarshal(rem[1], &msg); err != nil {
		return nil, fmt.Errorf("NEG-MSG: message: %w", err)
	}
	return &NegMsgEnvelope{SubID: subID, Message: msg}, nil
}

// NegCloseEnvelope is the client's inbound NEG-CLOSE message.
type NegCloseEnvelope struct {
	SubID string
}

// ParseNegClose decodes a NEG-CLOSE envelope's remainder.
func ParseNegClose(rem []json.RawMessage) (*NegCloseEnvelope, error) {
	if len(rem) != 1 {
		return nil, fmt.Errorf("NEG-CLOSE: expected 1 element, got %d", len(rem))
	}
	var subID string
	if err := json.Unmarshal(rem[0], &subID); err != nil {
		return nil, fmt.Errorf("NEG-CLOSE: %w", err)
	}
	return &NegCloseEnvelope{SubID: subID}, nil
}
