package store

import (
	"context"

	"lol.mleku.dev/chk"
	"nostrd.dev/pkg/filter"
)

// Query implements spec.md §4.4's query-events: a streaming, limit-bounded
// sequence in created_at descending order (ties broken by id ascending for
// deterministic output).
func (s *Store) Query(ctx context.Context, f *filter.F) (*Cursor, error) {
	c := compileFilter(f)
	limit := f.CappedLimit(s.maxLimit)
	query := `SELECT id, pubkey, created_at, kind, content, sig, tags_json FROM events e WHERE ` +
		c.where + ` ORDER BY created_at DESC, id ASC LIMIT ?`
	args := append(c.args, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if chk.E(err) {
		return nil, err
	}
	return &Cursor{rows: rows}, nil
}

// SyncPair is a (created_at, id) pair as produced by query-events-for-sync,
// the snapshot primitive behind set-reconciliation.
type SyncPair struct {
	CreatedAt int64
	ID        string
}

// QueryForSync implements spec.md §4.4's query-events-for-sync: a sequence
// of (id, created_at) pairs in (created_at, id) ascending order, bounded by
// the same limit capping as Query.
func (s *Store) QueryForSync(ctx context.Context, f *filter.F) ([]SyncPair, error) {
	c := compileFilter(f)
	limit := f.CappedLimit(s.maxLimit)
	query := `SELECT id, created_at FROM events e WHERE ` + c.where +
		` ORDER BY created_at ASC, id ASC LIMIT ?`
	args := append(c.args, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if chk.E(err) {
		return nil, err
	}
	defer rows.Close()
	var out []SyncPair
	for rows.Next() {
		var p SyncPair
		if err = rows.Scan(&p.ID, &p.CreatedAt); chk.E(err) {
			return nil, err
		}
		out = append(out, p)
	}
	if err = rows.Err(); chk.E(err) {
		return nil, err
	}
	return out, nil
}
