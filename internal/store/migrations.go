package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "users: account + orbit preferences",
		SQL: `
CREATE TABLE users (
    id                TEXT PRIMARY KEY,
    telegram_id       TEXT NOT NULL UNIQUE,
    display_name      TEXT NOT NULL,
    avatar_url        TEXT,
    timezone          TEXT NOT NULL DEFAULT 'Asia/Kolkata',
    inner_circle_size INTEGER NOT NULL DEFAULT 6,
    strictness        TEXT NOT NULL DEFAULT 'normal' CHECK (strictness IN ('gentle', 'normal', 'strict')),
    onboarded         INTEGER NOT NULL DEFAULT 0,
    last_battery      INTEGER,
    last_battery_at   INTEGER,
    created_at        INTEGER NOT NULL
);

CREATE INDEX idx_users_telegram ON users(telegram_id);
`,
	},
	{
		Version:     2,
		Description: "people: planets orbiting a user",
		SQL: `
CREATE TABLE people (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    name                 TEXT NOT NULL,
    relationship_type    TEXT NOT NULL CHECK (relationship_type IN ('partner', 'family', 'friend')),
    relationship_subtype TEXT,
    archetype            TEXT NOT NULL DEFAULT 'Anchor',
    cadence_days         INTEGER NOT NULL DEFAULT 7,
    tags                 TEXT NOT NULL DEFAULT '[]',
    pinned               INTEGER NOT NULL DEFAULT 0,
    archived             INTEGER NOT NULL DEFAULT 0,
    gravity_score        REAL NOT NULL DEFAULT 80.0,
    last_interaction     INTEGER,
    decayed_at           INTEGER,
    telegram_user_id     TEXT,
    connected            INTEGER NOT NULL DEFAULT 0,
    created_at           INTEGER NOT NULL,

    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE INDEX idx_people_user     ON people(user_id);
CREATE INDEX idx_people_archived ON people(archived);
CREATE INDEX idx_people_score    ON people(gravity_score);
`,
	},
	{
		Version:     3,
		Description: "meteors: memory notes attached to a person",
		SQL: `
CREATE TABLE meteors (
    id         TEXT PRIMARY KEY,
    person_id  TEXT NOT NULL,
    user_id    TEXT NOT NULL,
    content    TEXT NOT NULL,
    tag        TEXT,
    due_date   TEXT,
    done       INTEGER NOT NULL DEFAULT 0,
    archived   INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,

    FOREIGN KEY (person_id) REFERENCES people(id),
    FOREIGN KEY (user_id)   REFERENCES users(id)
);

CREATE INDEX idx_meteors_person ON meteors(person_id);
CREATE INDEX idx_meteors_user   ON meteors(user_id);
`,
	},
	{
		Version:     4,
		Description: "battery_logs: daily social battery readings",
		SQL: `
CREATE TABLE battery_logs (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL,
    score      INTEGER NOT NULL,
    created_at INTEGER NOT NULL,

    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE INDEX idx_battery_user ON battery_logs(user_id, created_at DESC);
`,
	},
	{
		Version:     5,
		Description: "invites: connect a person to their own telegram account",
		SQL: `
CREATE TABLE invites (
    id                  TEXT PRIMARY KEY,
    token               TEXT NOT NULL UNIQUE,
    inviter_id          TEXT NOT NULL,
    person_id           TEXT NOT NULL,
    status              TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'declined')),
    invitee_telegram_id TEXT,
    created_at          INTEGER NOT NULL,
    expires_at          INTEGER NOT NULL,

    FOREIGN KEY (inviter_id) REFERENCES users(id),
    FOREIGN KEY (person_id)  REFERENCES people(id)
);

CREATE INDEX idx_invites_token ON invites(token);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
