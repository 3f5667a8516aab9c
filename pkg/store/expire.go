package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
)

// CleanupExpired implements spec.md §4.4's cleanup-expired-events: deletes
// every event carrying an "expiration" tag whose value, parsed as a decimal
// integer, is strictly less than the current wall-clock second.
func (s *Store) CleanupExpired(ctx context.Context) (err error) {
	now := time.Now().Unix()
	var tx *sql.Tx
	if tx, err = s.db.BeginTx(ctx, nil); chk.E(err) {
		return
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(
		ctx,
		`SELECT DISTINCT event_id FROM tags
		 WHERE name = 'expiration' AND CAST(value AS INTEGER) < ?
		   AND value GLOB '[0-9]*'`,
		now,
	)
	if chk.E(err) {
		return
	}
	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); chk.E(err) {
			rows.Close()
			return
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err = rows.Err(); chk.E(err) {
		return
	}
	if len(ids) == 0 {
		return tx.Commit()
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err = tx.ExecContext(
		ctx, `DELETE FROM events WHERE id IN (`+placeholders+`)`, args...,
	); chk.E(err) {
		return
	}
	idList := strings.Join(quoteAll(ids), ",")
	if _, err = tx.ExecContext(
		ctx, `DELETE FROM events_fts WHERE id IN (`+idList+`)`,
	); chk.E(err) {
		return
	}

	if err = tx.Commit(); chk.E(err) {
		return
	}
	log.I.F("store: expiration sweep removed %d events", len(ids))
	return
}
