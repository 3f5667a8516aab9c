package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"lol.mleku.dev/chk"
)

// DeleteEvents implements spec.md §4.4's delete-events: ids are deleted
// outright when authored by pubkey; addresses ("kind:pk:d") are deleted by
// (kind, pubkey, d) when pk == pubkey and created_at <= until. Rows
// belonging to other authors are never deleted.
func (s *Store) DeleteEvents(
	ctx context.Context, pubkey string, ids []string, addresses []string, until int64,
) (err error) {
	var tx *sql.Tx
	if tx, err = s.db.BeginTx(ctx, nil); chk.E(err) {
		return
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if len(ids) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
		args := make([]any, 0, len(ids)+1)
		args = append(args, pubkey)
		for _, id := range ids {
			args = append(args, id)
		}
		var ownedIDs []string
		rows, qerr := tx.QueryContext(
			ctx,
			`SELECT id FROM events WHERE pubkey = ? AND id IN (`+placeholders+`)`,
			args...,
		)
		if chk.E(qerr) {
			err = qerr
			return
		}
		for rows.Next() {
			var id string
			if err = rows.Scan(&id); chk.E(err) {
				rows.Close()
				return
			}
			ownedIDs = append(ownedIDs, id)
		}
		rows.Close()
		if err = rows.Err(); chk.E(err) {
			return
		}
		if len(ownedIDs) > 0 {
			ownedPlaceholders := strings.TrimSuffix(strings.Repeat("?,", len(ownedIDs)), ",")
			ownedArgs := make([]any, 0, len(ownedIDs))
			for _, id := range ownedIDs {
				ownedArgs = append(ownedArgs, id)
			}
			if _, err = tx.ExecContext(
				ctx, `DELETE FROM events WHERE id IN (`+ownedPlaceholders+`)`, ownedArgs...,
			); chk.E(err) {
				return
			}
			idList := strings.Join(quoteAll(ownedIDs), ",")
			if _, err = tx.ExecContext(
				ctx, `DELETE FROM events_fts WHERE id IN (`+idList+`)`,
			); chk.E(err) {
				return
			}
		}
	}

	for _, addr := range addresses {
		parts := strings.SplitN(addr, ":", 3)
		if len(parts) != 3 {
			continue
		}
		k, perr := strconv.Atoi(parts[0])
		if perr != nil {
			continue
		}
		pk, d := parts[1], parts[2]
		if pk != pubkey {
			continue
		}
		var staleIDs []string
		rows, qerr := tx.QueryContext(
			ctx,
			`SELECT DISTINCT e.id FROM events e
			 JOIN tags t ON t.event_id = e.id AND t.name = 'd' AND t.value = ?
			 WHERE e.kind = ? AND e.pubkey = ? AND e.created_at <= ?`,
			d, k, pubkey, until,
		)
		if chk.E(qerr) {
			err = qerr
			return
		}
		for rows.Next() {
			var id string
			if err = rows.Scan(&id); chk.E(err) {
				rows.Close()
				return
			}
			staleIDs = append(staleIDs, id)
		}
		rows.Close()
		if len(staleIDs) == 0 {
			continue
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(staleIDs)), ",")
		args := make([]any, 0, len(staleIDs))
		for _, id := range staleIDs {
			args = append(args, id)
		}
		if _, err = tx.ExecContext(
			ctx, `DELETE FROM events WHERE id IN (`+placeholders+`)`, args...,
		); chk.E(err) {
			return
		}
		idList := strings.Join(quoteAll(staleIDs), ",")
		if _, err = tx.ExecContext(
			ctx, `DELETE FROM events_fts WHERE id IN (`+idList+`)`,
		); chk.E(err) {
			return
		}
	}

	return tx.Commit()
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return out
}
