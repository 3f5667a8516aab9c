package envelopes

import (
	"encoding/json"
	"io"

	"nostrd.dev/pkg/event"
)

// writeJSON marshals v and writes it to w, used by every outbound
// envelope's Write method.
func writeJSON(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// EventOut is the outbound EVENT message delivering a matched event on a
// subscription.
type EventOut struct {
	SubID string
	Event *event.E
}

func (en *EventOut) Write(w io.Writer) error {
	return writeJSON(w, [3]any{LabelEvent, en.SubID, en.Event})
}

// OK is the outbound OK acknowledgement for a published event.
type OK struct {
	EventID string
	Saved   bool
	Reason  string
}

func (en *OK) Write(w io.Writer) error {
	return writeJSON(w, [4]any{LabelOK, en.EventID, en.Saved, en.Reason})
}

// EOSE is the outbound end-of-stored-events marker for a REQ.
type EOSE struct {
	SubID string
}

func (en *EOSE) Write(w io.Writer) error {
	return writeJSON(w, [2]any{LabelEOSE, en.SubID})
}

// Closed is the outbound CLOSED message, sent instead of EOSE/EVENT when a
// subscription is rejected or forcibly torn down.
type Closed struct {
	SubID  string
	Reason string
}

func (en *Closed) Write(w io.Writer) error {
	return writeJSON(w, [3]any{LabelClosed, en.SubID, en.Reason})
}

// Notice is the outbound free-text NOTICE message.
type Notice struct {
	Message string
}

func (en *Notice) Write(w io.Writer) error {
	return writeJSON(w, [2]any{LabelNotice, en.Message})
}

// Auth is the outbound AUTH challenge.
type Auth struct {
	Challenge string
}

func (en *Auth) Write(w io.Writer) error {
	return writeJSON(w, [2]any{LabelAuth, en.Challenge})
}

// CountResult is the outbound COUNT response.
type CountResult struct {
	SubID string
	Count int
}

func (en *CountResult) Write(w io.Writer) error {
	return writeJSON(w, [3]any{LabelCount, en.SubID, map[string]int{"count": en.Count}})
}

// NegMsgOut is the outbound NEG-MSG reconciliation reply.
type NegMsgOut struct {
	SubID   string
	Message string
}

func (en *NegMsgOut) Write(w io.Writer) error {
	return writeJSON(w, [3]any{LabelNegMsg, en.SubID, en.Message})
}

// NegErr is the outbound NEG-ERR reconciliation failure.
type NegErr struct {
	SubID  string
	Reason string
}

func (en *NegErr) Write(w io.Writer) error {
	return writeJSON(w, [3]any{LabelNegErr, en.SubID, en.Reason})
}
