package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies every schema statement. Statements are idempotent so the
// full list runs on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS schedules (
		id                   TEXT PRIMARY KEY,
		name                 TEXT NOT NULL UNIQUE,
		slot_count           INTEGER NOT NULL CHECK(slot_count > 0),
		slots_per_second     REAL NOT NULL CHECK(slots_per_second > 0),
		total_capacity_bytes INTEGER NOT NULL CHECK(total_capacity_bytes >= 0),
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS items (
		id          TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		kind        TEXT NOT NULL CHECK(kind IN ('telemetry','application')),
		size_bytes  INTEGER NOT NULL DEFAULT 0 CHECK(size_bytes >= 0),
		bit_length  INTEGER NOT NULL DEFAULT 0 CHECK(bit_length >= 0),
		app_id      INTEGER,
		rate_hz     REAL NOT NULL CHECK(rate_hz > 0),
		link_id     TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		UNIQUE(schedule_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS revisions (
		schedule_id          TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		revision             TEXT NOT NULL CHECK(revision IN ('working','committed')),
		total_capacity_bytes INTEGER NOT NULL,
		fingerprint          TEXT NOT NULL,
		saved_at             TEXT NOT NULL,
		PRIMARY KEY (schedule_id, revision)
	)`,

	`CREATE TABLE IF NOT EXISTS slots (
		schedule_id     TEXT NOT NULL,
		revision        TEXT NOT NULL,
		slot_index      INTEGER NOT NULL,
		name            TEXT NOT NULL,
		identifier      TEXT NOT NULL DEFAULT '',
		capacity_bytes  INTEGER NOT NULL,
		bytes_remaining INTEGER NOT NULL,
		PRIMARY KEY (schedule_id, revision, slot_index),
		FOREIGN KEY (schedule_id, revision) REFERENCES revisions(schedule_id, revision) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS sub_slots (
		schedule_id     TEXT NOT NULL,
		revision        TEXT NOT NULL,
		slot_index      INTEGER NOT NULL,
		position        INTEGER NOT NULL CHECK(position >= 1),
		name            TEXT NOT NULL,
		identifier      TEXT NOT NULL DEFAULT '',
		bytes_remaining INTEGER NOT NULL,
		PRIMARY KEY (schedule_id, revision, slot_index, position),
		FOREIGN KEY (schedule_id, revision) REFERENCES revisions(schedule_id, revision) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS placements (
		schedule_id  TEXT NOT NULL,
		revision     TEXT NOT NULL,
		slot_index   INTEGER NOT NULL,
		position     INTEGER NOT NULL DEFAULT 0,
		seq          INTEGER NOT NULL,
		item_name    TEXT NOT NULL,
		member_slots TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (schedule_id, revision, slot_index, position, seq),
		FOREIGN KEY (schedule_id, revision) REFERENCES revisions(schedule_id, revision) ON DELETE CASCADE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_items_schedule ON items(schedule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_placements_item ON placements(schedule_id, item_name)`,
}
