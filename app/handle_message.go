package app

import (
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
	"nostrd.dev/pkg/envelopes"
	"nostrd.dev/pkg/reason"
)

// handleMessage implements spec.md §4.6 steps 2-3: parse the frame,
// identify its leading tag, and dispatch to the matching handler. A
// malformed frame is logged and dropped without a reply. A panic anywhere
// in the dispatched handler is recovered so one malformed message can't take
// down every other connection's goroutine along with it. When auth_required
// is set, any envelope other than AUTH from an unauthenticated connection is
// answered with an auth-required NOTICE and a fresh AUTH challenge instead.
func (s *Server) handleMessage(c *Connection, msg []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.D.F("%s: recovered from panic: %v", c.remote, r)
		}
	}()
	tagName, rem, err := envelopes.Identify(msg)
	if err != nil {
		log.D.F("%s: %v", c.remote, err)
		return
	}
	if s.Config.AuthRequired && tagName != envelopes.LabelAuth {
		if _, authed := c.IsAuthenticated(); !authed {
			chk.E((&envelopes.Notice{Message: reason.AuthRequired.F("authentication required")}).Write(c))
			chk.E((&envelopes.Auth{Challenge: c.challenge}).Write(c))
			return
		}
	}
	switch tagName {
	case envelopes.LabelEvent:
		s.handleEvent(c, rem)
	case envelopes.LabelReq:
		s.handleReq(c, rem)
	case envelopes.LabelCount:
		s.handleCount(c, rem)
	case envelopes.LabelAuth:
		s.handleAuth(c, rem)
	case envelopes.LabelClose:
		s.handleClose(c, rem)
	case envelopes.LabelNegOpen:
		s.handleNegOpen(c, rem)
	case envelopes.LabelNegMsg:
		s.handleNegMsg(c, rem)
	case envelopes.LabelNegClose:
		s.handleNegClose(c, rem)
	default:
		log.D.F("%s: unrecognized envelope tag %q", c.remote, tagName)
	}
}
