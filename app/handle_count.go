package app

import (
	"encoding/json"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
	"nostrd.dev/pkg/envelopes"
	"nostrd.dev/pkg/reason"
)

// handleCount implements spec.md §4.6's COUNT handler. Identical filter
// sets arriving concurrently from different connections share a single
// store query via the server's count singleflight group.
func (s *Server) handleCount(c *Connection, rem []json.RawMessage) {
	env, err := envelopes.ParseCount(rem)
	if err != nil {
		log.D.F("%s: %v", c.remote, err)
		return
	}
	if len(env.SubID) > s.Config.MaxSubidLength {
		chk.E((&envelopes.Closed{SubID: env.SubID, Reason: reason.Invalid.F("subscription id too long")}).Write(c))
		return
	}
	key, err := json.Marshal(env.Filters)
	if chk.E(err) {
		chk.E((&envelopes.Closed{SubID: env.SubID, Reason: reason.Error.F("%v", err)}).Write(c))
		return
	}
	v, err, _ := s.countGroup.Do(string(key), func() (any, error) {
		return s.Store.Count(c.ctx, env.Filters)
	})
	if chk.E(err) {
		chk.E((&envelopes.Closed{SubID: env.SubID, Reason: reason.Error.F("%v", err)}).Write(c))
		return
	}
	chk.E((&envelopes.CountResult{SubID: env.SubID, Count: v.(int)}).Write(c))
}
