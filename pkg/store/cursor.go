package store

import (
	"database/sql"
	"encoding/json"

	"nostrd.dev/pkg/event"
)

// Cursor is the lazy, memory-bounded sequence of fully-hydrated events of
// spec.md §4.4's query-events: it owns the underlying prepared statement and
// buffers one event at a time.
type Cursor struct {
	rows *sql.Rows
	err  error
}

// Next advances the cursor and returns the next fully-hydrated event, or
// nil (with ok=false) when the sequence is exhausted. Call Err after a
// false return to distinguish end-of-sequence from a read failure.
func (c *Cursor) Next() (e *event.E, ok bool) {
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			c.err = err
		}
		return nil, false
	}
	var (
		id, pubkey, content, sig, tagsJSON string
		createdAt                          int64
		kind                               int
	)
	if c.err = c.rows.Scan(&id, &pubkey, &createdAt, &kind, &content, &sig, &tagsJSON); c.err != nil {
		return nil, false
	}
	e = &event.E{
		ID: id, Pubkey: pubkey, CreatedAt: createdAt,
		Kind: uint16(kind), Content: content, Sig: sig,
	}
	if c.err = json.Unmarshal([]byte(tagsJSON), &e.Tags); c.err != nil {
		return nil, false
	}
	return e, true
}

// Err returns the first error encountered while scanning, if any.
func (c *Cursor) Err() error { return c.err }

// Close releases the underlying rows.
func (c *Cursor) Close() error { return c.rows.Close() }
