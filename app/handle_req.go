package app

import (
	"context"
	"encoding/json"
	"errors"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
	"nostrd.dev/pkg/envelopes"
	"nostrd.dev/pkg/event"
	"nostrd.dev/pkg/filter"
	"nostrd.dev/pkg/membership"
	"nostrd.dev/pkg/reason"
)

// membershipFalsePositiveRate is the target false-positive rate for a
// subscription's probabilistic prefilter, per spec.md §4.3.
const membershipFalsePositiveRate = 0.01

// handleReq implements spec.md §4.6's REQ handler: subscription and filter
// count limits, the §4.3 membership prefilter, capped historical streaming
// with cross-filter id dedup, and a cancellable stream bounded by the
// subscription's own token.
func (s *Server) handleReq(c *Connection, rem []json.RawMessage) {
	env, err := envelopes.ParseReq(rem)
	if err != nil {
		log.D.F("%s: %v", c.remote, err)
		return
	}
	subID := env.SubID

	if len(subID) > s.Config.MaxSubidLength {
		chk.E((&envelopes.Closed{SubID: subID, Reason: reason.Invalid.F("subscription id too long")}).Write(c))
		return
	}
	if c.subscriptionCount() >= s.Config.MaxSubscriptions && !c.hasSubscription(subID) {
		chk.E((&envelopes.Closed{SubID: subID, Reason: reason.Error.F("max subscriptions reached")}).Write(c))
		return
	}
	if len(env.Filters) > s.Config.MaxFilters {
		chk.E((&envelopes.Closed{SubID: subID, Reason: reason.Error.F("too many filters")}).Write(c))
		return
	}

	sub := &Subscription{ID: subID, Filters: env.Filters}
	if !env.Filters.AnyBroad() {
		ids, authors, tagValues := filter.UnionValues(env.Filters)
		n := len(ids) + len(authors) + len(tagValues)
		if n > 0 {
			mf := membership.New(n, membershipFalsePositiveRate)
			for _, v := range ids {
				mf.Add(v)
			}
			for _, v := range authors {
				mf.Add(v)
			}
			for _, v := range tagValues {
				mf.Add(v)
			}
			sub.Membership = mf
		}
	}

	ctx, cancel := context.WithCancel(c.ctx)
	sub.cancel = cancel
	c.addSubscription(sub)

	seen := map[string]struct{}{}
	for _, f := range env.Filters {
		if err := s.streamFilter(ctx, c, subID, f, seen); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.E.F("%s: query-events: %v", c.remote, err)
		}
	}
	chk.E((&envelopes.EOSE{SubID: subID}).Write(c))
}

// streamFilter runs one filter's query-events stream, emitting EVENT
// frames and suppressing ids already delivered earlier in this REQ.
func (s *Server) streamFilter(
	ctx context.Context, c *Connection, subID string, f *filter.F, seen map[string]struct{},
) error {
	cur, err := s.Store.Query(ctx, f)
	if err != nil {
		return err
	}
	defer cur.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		e, ok := cur.Next()
		if !ok {
			break
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		pubkey, _ := c.IsAuthenticated()
		if !e.VisibleTo(pubkey) {
			continue
		}
		if err := writeEvent(c, subID, e); chk.E(err) {
			return err
		}
	}
	return cur.Err()
}

func writeEvent(c *Connection, subID string, e *event.E) error {
	return (&envelopes.EventOut{SubID: subID, Event: e}).Write(c)
}
