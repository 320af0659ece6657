package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	owner_id        TEXT NOT NULL,
	tags            TEXT NOT NULL DEFAULT '[]',
	flow_title      TEXT NOT NULL DEFAULT '',
	custom_note     TEXT NOT NULL DEFAULT '',
	approach        TEXT NOT NULL,
	approach_index  INTEGER NOT NULL DEFAULT 0,
	total_steps     INTEGER NOT NULL DEFAULT 0,
	completed_steps INTEGER NOT NULL DEFAULT 0,
	status          TEXT NOT NULL DEFAULT 'ongoing',
	outcome         TEXT NOT NULL DEFAULT '',
	final_notes     TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL,
	updated_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);

CREATE TABLE IF NOT EXISTS session_steps (
	session_id   TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	text         TEXT NOT NULL,
	completed    INTEGER NOT NULL DEFAULT 0,
	completed_at DATETIME,
	PRIMARY KEY (session_id, position)
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE session_steps ADD COLUMN notes TEXT NOT NULL DEFAULT '';
CREATE INDEX IF NOT EXISTS idx_sessions_owner ON sessions(owner_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
