package app

import (
	"context"
	"encoding/json"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
	"nostrd.dev/pkg/envelopes"
	"nostrd.dev/pkg/reason"
	"nostrd.dev/pkg/reconcile"
)

// handleNegOpen implements spec.md §4.5's NEG-OPEN: materialize the sync
// snapshot bounded by max_limit, seal it into a reconciliation session, and
// reply with the first produced message. Reusing a subId cancels and drops
// the prior session first.
func (s *Server) handleNegOpen(c *Connection, rem []json.RawMessage) {
	env, err := envelopes.ParseNegOpen(rem)
	if err != nil {
		log.D.F("%s: %v", c.remote, err)
		return
	}
	subID := env.SubID
	if len(subID) > s.Config.MaxSubidLength {
		chk.E((&envelopes.NegErr{SubID: subID, Reason: reason.Invalid.F("subscription id too long")}).Write(c))
		return
	}

	pairs, err := s.Store.QueryForSync(c.ctx, env.Filter)
	if chk.E(err) {
		chk.E((&envelopes.NegErr{SubID: subID, Reason: reason.Error.F("%v", err)}).Write(c))
		return
	}
	sess, err := reconcile.New(pairs)
	if err != nil {
		chk.E((&envelopes.NegErr{SubID: subID, Reason: reason.Error.F("%v", err)}).Write(c))
		return
	}

	_, cancel := context.WithCancel(c.ctx)
	c.setNegSession(subID, &negSession{session: sess, cancel: cancel})

	next, _, _, err := sess.Reconcile(env.Initial)
	if err != nil {
		chk.E((&envelopes.NegErr{SubID: subID, Reason: reason.Error.F("%v", err)}).Write(c))
		c.removeNegSession(subID)
		return
	}
	chk.E((&envelopes.NegMsgOut{SubID: subID, Message: next}).Write(c))
}

// handleNegMsg implements spec.md §4.5's NEG-MSG: feed the peer's message
// into the open session and forward the produced message.
func (s *Server) handleNegMsg(c *Connection, rem []json.RawMessage) {
	env, err := envelopes.ParseNegMsg(rem)
	if err != nil {
		log.D.F("%s: %v", c.remote, err)
		return
	}
	ns, ok := c.getNegSession(env.SubID)
	if !ok {
		chk.E((&envelopes.NegErr{SubID: env.SubID, Reason: reason.Closed.F("subscription not found")}).Write(c))
		return
	}
	next, _, _, err := ns.session.Reconcile(env.Message)
	if err != nil {
		chk.E((&envelopes.NegErr{SubID: env.SubID, Reason: reason.Error.F("%v", err)}).Write(c))
		return
	}
	chk.E((&envelopes.NegMsgOut{SubID: env.SubID, Message: next}).Write(c))
}

// handleNegClose implements spec.md §4.5's NEG-CLOSE: cancel and drop the
// named reconciliation session.
func (s *Server) handleNegClose(c *Connection, rem []json.RawMessage) {
	env, err := envelopes.ParseNegClose(rem)
	if err != nil {
		log.D.F("%s: %v", c.remote, err)
		return
	}
	c.removeNegSession(env.SubID)
}
