package app

import (
	"lol.mleku.dev/chk"
	"nostrd.dev/pkg/event"
	"nostrd.dev/pkg/filter"
	"nostrd.dev/pkg/membership"
)

// broadcast implements spec.md §4.7: deliver e to every live connection's
// matching subscriptions. The membership filter, when present, prefilters
// on the event id, pubkey and each tag value's first component before the
// exact match-filters check runs. Returns the number of deliveries made.
func (s *Server) broadcast(e *event.E) int {
	deliveries := 0
	for _, c := range s.connections() {
		pubkey, _ := c.IsAuthenticated()
		if !e.VisibleTo(pubkey) {
			continue
		}
		for _, sub := range c.snapshotSubscriptions() {
			if sub.Membership != nil && !membershipProbe(sub.Membership, e) {
				continue
			}
			if !filter.MatchFilters(sub.Filters, e) {
				continue
			}
			if err := writeEvent(c, sub.ID, e); chk.E(err) {
				continue
			}
			deliveries++
		}
	}
	return deliveries
}

func membershipProbe(mf *membership.Filter, e *event.E) bool {
	if mf.Test(e.ID) || mf.Test(e.Pubkey) {
		return true
	}
	for _, t := range e.Tags {
		if t.Indexable() && mf.Test(t.Value()) {
			return true
		}
	}
	return false
}
