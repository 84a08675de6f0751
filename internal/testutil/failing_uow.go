package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/cadence/internal/db"
)

// FailOnInsertUoW runs transactions in which the Nth INSERT into Table
// fails with Err, so a test can break a multi-row save at a chosen row
// (the second slot of a revision, the third item of an import) and check
// that nothing from the transaction survives. Counting starts at 1 for
// each transaction; other statements pass through.
type FailOnInsertUoW struct {
	DB    *sql.DB
	Table string
	Nth   int32
	Err   error
}

func (u *FailOnInsertUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failOnInsert{DBTX: tx, table: u.Table, nth: u.Nth, err: u.Err}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failOnInsert struct {
	db.DBTX
	table string
	count atomic.Int32
	nth   int32
	err   error
}

func (f *failOnInsert) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if insertTable(query) == f.table && f.count.Add(1) == f.nth {
		return nil, fmt.Errorf("insert into %s #%d: %w", f.table, f.nth, f.err)
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

// insertTable returns the table an INSERT statement writes, or "".
func insertTable(query string) string {
	fields := strings.Fields(query)
	if len(fields) < 3 || !strings.EqualFold(fields[0], "INSERT") || !strings.EqualFold(fields[1], "INTO") {
		return ""
	}
	table, _, _ := strings.Cut(fields[2], "(")
	return table
}
