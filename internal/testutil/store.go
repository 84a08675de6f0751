package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/domain"
)

// revisionTables hold the rows of one stored revision.
var revisionTables = []string{"revisions", "slots", "sub_slots", "placements"}

// NewTestDB opens a private in-memory schedule store with migrations
// applied. It is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openStore(t, db.MemoryPath)
}

// NewTestFileDB opens a WAL-mode store in the test's temp dir. Its pooled
// connections share one database, so concurrent readers can run against a
// writer.
func NewTestFileDB(t *testing.T) *sql.DB {
	t.Helper()
	return openStore(t, filepath.Join(t.TempDir(), "cadence.db"))
}

func openStore(t *testing.T, path string) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(path)
	if err != nil {
		t.Fatalf("opening test store %s: %v", path, err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// RevisionRows counts the stored rows of one schedule revision per table.
func RevisionRows(t *testing.T, database db.DBTX, scheduleID string, rev domain.Revision) map[string]int {
	t.Helper()
	counts := make(map[string]int, len(revisionTables))
	for _, table := range revisionTables {
		var n int
		err := database.QueryRowContext(context.Background(),
			`SELECT COUNT(*) FROM `+table+` WHERE schedule_id = ? AND revision = ?`,
			scheduleID, string(rev)).Scan(&n)
		if err != nil {
			t.Fatalf("counting %s rows: %v", table, err)
		}
		counts[table] = n
	}
	return counts
}
