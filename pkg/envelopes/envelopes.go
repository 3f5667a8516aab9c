// Package envelopes encodes and decodes the framed text messages of spec.md
// §6: each frame is a JSON array whose first element is a leading tag
// string that the router dispatches on.
package envelopes

import (
	"encoding/json"
	"fmt"
)

// Identify parses msg far enough to recover its leading tag and the
// remaining array elements, without fully decoding the payload — the
// caller re-dispatches rem to the envelope type matching tag.
func Identify(msg []byte) (tag string, rem []json.RawMessage, err error) {
	var raw []json.RawMessage
	if err = json.Unmarshal(msg, &raw); err != nil {
		return "", nil, fmt.Errorf("malformed envelope: %w", err)
	}
	if len(raw) == 0 {
		return "", nil, fmt.Errorf("malformed envelope: empty array")
	}
	if err = json.Unmarshal(raw[0], &tag); err != nil {
		return "", nil, fmt.Errorf("malformed envelope: leading tag not a string: %w", err)
	}
	return tag, raw[1:], nil
}

// Recognized leading tags, per spec.md §6.
const (
	LabelEvent    = "EVENT"
	LabelReq      = "REQ"
	LabelCount    = "COUNT"
	LabelAuth     = "AUTH"
	LabelClose    = "CLOSE"
	LabelClosed   = "CLOSED"
	LabelEOSE     = "EOSE"
	LabelOK       = "OK"
	LabelNotice   = "NOTICE"
	LabelNegOpen  = "NEG-OPEN"
	LabelNegMsg   = "NEG-MSG"
	LabelNegClose = "NEG-CLOSE"
	LabelNegErr   = "NEG-ERR"
)
