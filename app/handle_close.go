package app

import (
	"encoding/json"

	"lol.mleku.dev/log"
	"nostrd.dev/pkg/envelopes"
)

// handleClose implements spec.md §4.6's CLOSE handler: cancel the named
// subscription's stream, if still running, and drop it.
func (s *Server) handleClose(c *Connection, rem []json.RawMessage) {
	env, err := envelopes.ParseClose(rem)
	if err != nil {
		log.D.F("%s: %v", c.remote, err)
		return
	}
	c.removeSubscription(env.SubID)
}
