package app

import (
	"encoding/json"
	"time"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
	"nostrd.dev/pkg/envelopes"
	"nostrd.dev/pkg/event"
	"nostrd.dev/pkg/filter"
	"nostrd.dev/pkg/reason"
)

// handleEvent implements spec.md §4.6's EVENT handler: validation,
// publish-time expiration, the restricted_writes auth gate, the NIP-70
// protected-event auth gate, a
// non-ephemeral save, kind-5 deletion processing and broadcast.
func (s *Server) handleEvent(c *Connection, rem []json.RawMessage) {
	env, err := envelopes.ParseEvent(rem)
	if err != nil {
		log.D.F("%s: %v", c.remote, err)
		return
	}
	e := env.Event

	if ok, reasonStr := e.Validate(s.Config.MinPowDifficulty, s.Config.MaxTags); !ok {
		s.reject(c, e.ID, reasonStr)
		return
	}

	if expTag := e.Tags.GetFirst("expiration"); expTag != nil {
		if ts, valid := filter.ParseExpiration(expTag.Value()); valid && ts < time.Now().Unix() {
			s.reject(c, e.ID, reason.Error.F("event has expired"))
			return
		}
	}

	if ok, reasonStr := event.ValidateCreatedAt(
		e.CreatedAt, s.Config.CreatedAtLowerLimit, s.Config.CreatedAtUpperLimit,
	); !ok {
		s.reject(c, e.ID, reasonStr)
		return
	}

	if s.Config.RestrictedWrites {
		if _, authed := c.IsAuthenticated(); !authed {
			s.reject(c, e.ID, reason.AuthRequired.F("this relay only accepts events from authenticated clients"))
			chk.E((&envelopes.Auth{Challenge: c.challenge}).Write(c))
			return
		}
	}

	if e.Tags.GetFirst("-") != nil {
		pubkey, authed := c.IsAuthenticated()
		if !authed {
			s.reject(c, e.ID, reason.AuthRequired.F("this event may only be published by its author"))
			chk.E((&envelopes.Auth{Challenge: c.challenge}).Write(c))
			return
		}
		if pubkey != e.Pubkey {
			s.reject(c, e.ID, reason.Restricted.F("protected event must be published by %s", e.Pubkey))
			return
		}
	}

	if !e.IsEphemeral() {
		if err = s.Store.Save(c.ctx, e); err != nil {
			s.reject(c, e.ID, reason.Error.F("%v", err))
			return
		}
	}

	chk.E((&envelopes.OK{EventID: e.ID, Saved: true, Reason: ""}).Write(c))

	if e.Kind == 5 {
		ids := e.Tags.Values("e")
		addrs := e.Tags.Values("a")
		if len(ids) > 0 || len(addrs) > 0 {
			if derr := s.Store.DeleteEvents(c.ctx, e.Pubkey, ids, addrs, e.CreatedAt); chk.E(derr) {
				log.E.F("%s: delete-events: %v", c.remote, derr)
			}
		}
	}

	s.broadcast(e)
}

func (s *Server) reject(c *Connection, eventID, reasonStr string) {
	chk.E((&envelopes.OK{EventID: eventID, Saved: false, Reason: reasonStr}).Write(c))
}
