package app

import (
	"encoding/json"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
	"nostrd.dev/pkg/auth"
	"nostrd.dev/pkg/envelopes"
)

// handleAuth implements spec.md §4.6's AUTH handler: validate the signed
// challenge response and, on success, record the pubkey on the connection.
func (s *Server) handleAuth(c *Connection, rem []json.RawMessage) {
	env, err := envelopes.ParseAuth(rem)
	if err != nil {
		log.D.F("%s: %v", c.remote, err)
		return
	}
	e := env.Event
	ok, reason := auth.Validate(
		e, s.Config.MinPowDifficulty, s.Config.MaxTags, c.challenge, c.relayURL,
	)
	if !ok {
		chk.E((&envelopes.OK{EventID: e.ID, Saved: false, Reason: reason}).Write(c))
		return
	}
	c.authedPubkey.Store(e.Pubkey)
	chk.E((&envelopes.OK{EventID: e.ID, Saved: true, Reason: ""}).Write(c))
}
