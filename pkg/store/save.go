package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
	"nostrd.dev/pkg/event"
	"nostrd.dev/pkg/fts"
)

// Save implements spec.md §4.4's save-event: replacement for
// replaceable/addressable kinds, insert-or-noop on id conflict, tag rows for
// every indexable tag, and FTS sync — all inside one transaction.
func (s *Store) Save(ctx context.Context, e *event.E) (err error) {
	var tx *sql.Tx
	if tx, err = s.db.BeginTx(ctx, nil); chk.E(err) {
		return
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if e.IsReplaceable() || e.IsAddressable() {
		var existingID string
		var existingCreatedAt int64
		var found bool
		if e.IsReplaceable() {
			found, existingID, existingCreatedAt, err = queryRetained(
				ctx, tx, "SELECT id, created_at FROM events WHERE kind = ? AND pubkey = ?",
				int(e.Kind), e.Pubkey,
			)
		} else {
			found, existingID, existingCreatedAt, err = queryAddressableRetained(
				ctx, tx, e.Kind, e.Pubkey, e.DTag(),
			)
		}
		if chk.E(err) {
			return
		}
		if found {
			olderWins := e.CreatedAt < existingCreatedAt ||
				(e.CreatedAt == existingCreatedAt && e.ID > existingID)
			if olderWins {
				return tx.Commit()
			}
			if _, err = tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, existingID); chk.E(err) {
				return
			}
			if _, err = tx.ExecContext(ctx, `DELETE FROM events_fts WHERE id = ?`, existingID); chk.E(err) {
				return
			}
		}
	}

	tagsJSON, err := json.Marshal(e.Tags)
	if chk.E(err) {
		return
	}

	res, err := tx.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO events (id, pubkey, created_at, kind, content, sig, tags_json) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Pubkey, e.CreatedAt, int(e.Kind), e.Content, e.Sig, string(tagsJSON),
	)
	if chk.E(err) {
		return
	}
	n, err := res.RowsAffected()
	if chk.E(err) {
		return
	}
	if n == 0 {
		// Duplicate id: the later write is a no-op, per spec.md §3.
		return tx.Commit()
	}

	if _, err = tx.ExecContext(
		ctx, `INSERT INTO events_fts (id, content) VALUES (?, ?)`,
		e.ID, fts.Segment(e.Content),
	); chk.E(err) {
		return
	}

	for _, t := range e.Tags {
		if !t.Indexable() {
			continue
		}
		if _, err = tx.ExecContext(
			ctx, `INSERT INTO tags (event_id, name, value) VALUES (?, ?, ?)`,
			e.ID, t.Name(), t.Value(),
		); chk.E(err) {
			return
		}
	}

	if err = tx.Commit(); chk.E(err) {
		return
	}
	log.T.F("store: saved event %s kind %d", e.ID, e.Kind)
	return
}

func queryRetained(
	ctx context.Context, tx *sql.Tx, query string, args ...any,
) (found bool, id string, createdAt int64, err error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return
	}
	defer rows.Close()
	// There should be at most one retained row per replaceable (kind,
	// pubkey), but tolerate pre-existing duplicates from a prior bug by
	// keeping the one that maximizes (created_at, -id).
	for rows.Next() {
		var rid string
		var rcat int64
		if err = rows.Scan(&rid, &rcat); err != nil {
			return
		}
		if !found || rcat > createdAt || (rcat == createdAt && rid < id) {
			found, id, createdAt = true, rid, rcat
		}
	}
	err = rows.Err()
	return
}

func queryAddressableRetained(
	ctx context.Context, tx *sql.Tx, k uint16, pubkey, d string,
) (found bool, id string, createdAt int64, err error) {
	rows, err := tx.QueryContext(
		ctx,
		`SELECT DISTINCT e.id, e.created_at FROM events e
		 LEFT JOIN tags t ON t.event_id = e.id AND t.name = 'd'
		 WHERE e.kind = ? AND e.pubkey = ? AND COALESCE(t.value, '') = ?`,
		int(k), pubkey, d,
	)
	if err != nil {
		return
	}
	defer rows.Close()
	for rows.Next() {
		var rid string
		var rcat int64
		if err = rows.Scan(&rid, &rcat); err != nil {
			return
		}
		if !found || rcat > createdAt || (rcat == createdAt && rid < id) {
			found, id, createdAt = true, rid, rcat
		}
	}
	err = rows.Err()
	return
}
