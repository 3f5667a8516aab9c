package store

import (
	"context"

	"lol.mleku.dev/chk"
	"nostrd.dev/pkg/filter"
)

// Count implements spec.md §4.4's count-events: the sum over filters of the
// row count matching each filter's predicates (an event matched by multiple
// filters is counted once per filter, mirroring COUNT's protocol semantics).
func (s *Store) Count(ctx context.Context, fs filter.S) (total int, err error) {
	for _, f := range fs {
		c := compileFilter(f)
		row := s.db.QueryRowContext(
			ctx, `SELECT COUNT(*) FROM events e WHERE `+c.where, c.args...,
		)
		var n int
		if err = row.Scan(&n); chk.E(err) {
			return
		}
		total += n
	}
	return
}
