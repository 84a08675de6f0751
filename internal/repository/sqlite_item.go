package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/domain"
)

const itemColumns = `id, name, kind, size_bytes, bit_length, app_id, rate_hz, link_id`

// SQLiteItemRepo implements ItemRepo using a SQLite database.
type SQLiteItemRepo struct {
	db db.DBTX
}

func NewSQLiteItemRepo(db db.DBTX) *SQLiteItemRepo {
	return &SQLiteItemRepo{db: db}
}

func (r *SQLiteItemRepo) Create(ctx context.Context, scheduleID string, it *domain.Item) error {
	var bitLength int
	if it.Telemetry != nil {
		bitLength = it.Telemetry.BitLength
	}
	var appID sql.NullInt64
	if it.Application != nil {
		appID = sql.NullInt64{Int64: int64(it.Application.AppID), Valid: true}
	}

	query := `INSERT INTO items (` + itemColumns + `, schedule_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		it.ID,
		it.Name,
		string(it.Kind),
		it.SizeBytes,
		bitLength,
		appID,
		it.RateHz,
		it.LinkID,
		scheduleID,
		nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

func (r *SQLiteItemRepo) GetByName(ctx context.Context, scheduleID, name string) (*domain.Item, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE schedule_id = ? AND name = ?`, scheduleID, name)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("item %q: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return it, nil
}

func (r *SQLiteItemRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE schedule_id = ? ORDER BY name`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var out []*domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return out, nil
}

func (r *SQLiteItemRepo) Delete(ctx context.Context, scheduleID, name string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM items WHERE schedule_id = ? AND name = ?`, scheduleID, name)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("item %q", name))
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var it domain.Item
	var kind string
	var bitLength int
	var appID sql.NullInt64
	err := row.Scan(&it.ID, &it.Name, &kind, &it.SizeBytes, &bitLength, &appID, &it.RateHz, &it.LinkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	it.Kind = domain.ItemKind(kind)
	switch it.Kind {
	case domain.ItemTelemetry:
		it.Telemetry = &domain.TelemetryPayload{BitLength: bitLength}
	case domain.ItemApplication:
		it.Application = &domain.ApplicationPayload{}
		if appID.Valid {
			it.Application.AppID = uint16(appID.Int64)
		}
	}
	return &it, nil
}
