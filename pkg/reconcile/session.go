// Package reconcile wraps the external range-based set-reconciliation codec
// of spec.md §4.5 in a per-subscription session bound to a frozen snapshot.
package reconcile

import (
	"fmt"
	"sort"

	negentropy "github.com/illuzen/go-negentropy"
	"nostrd.dev/pkg/store"
)

// FrameSizeLimit is the relay's fixed frame-size limit for codec messages,
// per spec.md §4.5.
const FrameSizeLimit = 1 << 20 // 1 MiB

// Session is a per-subscription reconciliation session: an opaque codec
// instance bound to a frozen (created_at, id) snapshot vector.
type Session struct {
	neg *negentropy.Negentropy
}

// New builds a Session from a query-events-for-sync snapshot: the pairs are
// sorted ascending by (created_at, id) and de-duplicated before being
// sealed into the codec's storage, per spec.md §4.5.
func New(pairs []store.SyncPair) (*Session, error) {
	sorted := make([]store.SyncPair, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt != sorted[j].CreatedAt {
			return sorted[i].CreatedAt < sorted[j].CreatedAt
		}
		return sorted[i].ID < sorted[j].ID
	})

	vec := negentropy.NewVector()
	var last *store.SyncPair
	for i := range sorted {
		p := sorted[i]
		if last != nil && last.CreatedAt == p.CreatedAt && last.ID == p.ID {
			continue
		}
		if err := vec.Insert(uint64(p.CreatedAt), p.ID); err != nil {
			return nil, fmt.Errorf("reconcile: insert %s: %w", p.ID, err)
		}
		last = &sorted[i]
	}
	if err := vec.Seal(); err != nil {
		return nil, fmt.Errorf("reconcile: seal: %w", err)
	}

	neg, err := negentropy.NewNegentropy(vec, FrameSizeLimit)
	if err != nil {
		return nil, fmt.Errorf("reconcile: new codec: %w", err)
	}
	return &Session{neg: neg}, nil
}

// Reconcile feeds one hex message from the peer into the codec and returns
// the message to send back (empty when the exchange is complete on this
// side) plus the have/need id lists the codec produced.
func (s *Session) Reconcile(msg string) (next string, have, need []string, err error) {
	next, have, need, err = s.neg.ReconcileWithIDs(msg)
	if err != nil {
		return "", nil, nil, fmt.Errorf("reconcile: %w", err)
	}
	return next, have, need, nil
}
