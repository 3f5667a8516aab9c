// Package store implements the relational event store of spec.md §4.4: a
// local database of events, their tags, and a full-text index, with
// replacement rules, expiration sweep, and streaming filter compilation.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	_ "github.com/mattn/go-sqlite3"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/errorf"
	"lol.mleku.dev/log"
)

// Store wraps the database handle and the runtime limit used to cap
// unbounded filters.
type Store struct {
	db       *sql.DB
	maxLimit int
	lock     *flock.Flock
}

// Open opens (and if necessary initializes) the database at path, which may
// be a filesystem path or ":memory:" per spec.md §6's configuration
// contract. maxLimit bounds every query-events/query-events-for-sync call
// whose filter omits or exceeds it. A file-based path is guarded by an
// exclusive advisory lock so a second relay process started against the
// same database file fails fast instead of corrupting it.
func Open(path string, maxLimit int) (s *Store, err error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL", path)
	var lock *flock.Flock
	if path == ":memory:" {
		dsn = ":memory:?_foreign_keys=1"
	} else {
		if dir := filepath.Dir(path); dir != "." {
			if err = os.MkdirAll(dir, 0755); chk.E(err) {
				return
			}
		}
		lock = flock.New(path + ".lock")
		var locked bool
		if locked, err = lock.TryLock(); chk.E(err) {
			return
		}
		if !locked {
			err = errorf.E("store: %s is already locked by another process", path)
			return
		}
	}
	var db *sql.DB
	if db, err = sql.Open("sqlite3", dsn); chk.E(err) {
		return
	}
	if path == ":memory:" {
		// An in-memory database lives only on its one connection; a second
		// pooled connection would see an empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err = db.Exec(schema); chk.E(err) {
		err = errorf.E("store: schema init: %w", err)
		return
	}
	s = &Store{db: db, maxLimit: maxLimit, lock: lock}
	log.I.F("store: opened %s", path)
	return
}

// Close releases the underlying database handle and, if held, the
// file lock.
func (s *Store) Close() error {
	if s.lock != nil {
		chk.E(s.lock.Unlock())
	}
	return s.db.Close()
}
