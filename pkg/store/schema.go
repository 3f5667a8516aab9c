package store

// schema is the relational layout of spec.md §4.4: two relations plus a
// full-text virtual relation, kept in sync with events by the write path
// rather than a stored trigger.
const schema = `
CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	pubkey     TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	kind       INTEGER NOT NULL,
	content    TEXT NOT NULL,
	sig        TEXT NOT NULL,
	-- full tag array, exactly as received; the tags table below is only
	-- the (name, value) side-index used for query predicates.
	tags_json  TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_events_pubkey ON events(pubkey);
CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at);
CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);

CREATE TABLE IF NOT EXISTS tags (
	event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	name     TEXT NOT NULL,
	value    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tags_name_value ON tags(name, value);
CREATE INDEX IF NOT EXISTS idx_tags_event_id ON tags(event_id);

CREATE VIRTUAL TABLE IF NOT EXISTS events_fts USING fts5(
	id UNINDEXED, content, tokenize = 'unicode61'
);
`
