package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/domain"
)

// SQLiteRevisionRepo implements RevisionRepo using a SQLite database. Slots,
// sub-slots and placements are rows keyed by (schedule, revision); items
// are stored once as definitions and referenced by name.
type SQLiteRevisionRepo struct {
	db db.DBTX
}

func NewSQLiteRevisionRepo(db db.DBTX) *SQLiteRevisionRepo {
	return &SQLiteRevisionRepo{db: db}
}

// Save deletes any previous copy of the revision and writes rev in its
// place. Callers run it inside a unit of work so a failure leaves the old
// copy intact.
func (r *SQLiteRevisionRepo) Save(ctx context.Context, scheduleID string, rev StoredRevision) error {
	if err := r.deleteRows(ctx, scheduleID, rev.Revision); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO revisions (schedule_id, revision, total_capacity_bytes, fingerprint, saved_at)
		 VALUES (?, ?, ?, ?, ?)`,
		scheduleID, string(rev.Revision), rev.TotalCapacityBytes, formatFingerprint(rev.Fingerprint), nowUTC())
	if err != nil {
		return fmt.Errorf("inserting revision: %w", err)
	}

	for idx, slot := range rev.Slots {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO slots (schedule_id, revision, slot_index, name, identifier, capacity_bytes, bytes_remaining)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			scheduleID, string(rev.Revision), idx, slot.Name, slot.Identifier, slot.CapacityBytes, slot.BytesRemaining)
		if err != nil {
			return fmt.Errorf("inserting slot %d: %w", idx, err)
		}
		if err := r.insertPlacements(ctx, scheduleID, rev.Revision, idx, 0, slot.Items); err != nil {
			return err
		}

		for i, sub := range slot.SubSlots {
			pos := i + 1
			_, err := r.db.ExecContext(ctx,
				`INSERT INTO sub_slots (schedule_id, revision, slot_index, position, name, identifier, bytes_remaining)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				scheduleID, string(rev.Revision), idx, pos, sub.Name, sub.Identifier, sub.BytesRemaining)
			if err != nil {
				return fmt.Errorf("inserting sub-slot %d/%d: %w", idx, pos, err)
			}
			if err := r.insertPlacements(ctx, scheduleID, rev.Revision, idx, pos, sub.Items); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *SQLiteRevisionRepo) insertPlacements(ctx context.Context, scheduleID string, rev domain.Revision, slot, pos int, items []*domain.Item) error {
	for seq, it := range items {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO placements (schedule_id, revision, slot_index, position, seq, item_name, member_slots)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			scheduleID, string(rev), slot, pos, seq, it.Name, joinSlots(it.Slots))
		if err != nil {
			return fmt.Errorf("inserting placement %q: %w", it.Name, err)
		}
	}
	return nil
}

func (r *SQLiteRevisionRepo) Load(ctx context.Context, scheduleID string, rev domain.Revision) (*StoredRevision, error) {
	out := &StoredRevision{Revision: rev}
	var fp string
	err := r.db.QueryRowContext(ctx,
		`SELECT total_capacity_bytes, fingerprint FROM revisions WHERE schedule_id = ? AND revision = ?`,
		scheduleID, string(rev)).Scan(&out.TotalCapacityBytes, &fp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s revision: %w", rev, ErrNotFound)
		}
		return nil, fmt.Errorf("loading revision: %w", err)
	}
	if out.Fingerprint, err = parseFingerprint(fp); err != nil {
		return nil, fmt.Errorf("parsing fingerprint: %w", err)
	}

	slots, err := r.loadSlots(ctx, scheduleID, rev)
	if err != nil {
		return nil, err
	}
	if err := r.loadSubSlots(ctx, scheduleID, rev, slots); err != nil {
		return nil, err
	}
	defs, err := NewSQLiteItemRepo(r.db).ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if err := r.loadPlacements(ctx, scheduleID, rev, slots, defs); err != nil {
		return nil, err
	}
	out.Slots = slots
	return out, nil
}

func (r *SQLiteRevisionRepo) loadSlots(ctx context.Context, scheduleID string, rev domain.Revision) ([]*domain.Slot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT slot_index, name, identifier, capacity_bytes, bytes_remaining
		 FROM slots WHERE schedule_id = ? AND revision = ? ORDER BY slot_index`,
		scheduleID, string(rev))
	if err != nil {
		return nil, fmt.Errorf("loading slots: %w", err)
	}
	defer rows.Close()

	var slots []*domain.Slot
	for rows.Next() {
		var idx int
		s := &domain.Slot{}
		if err := rows.Scan(&idx, &s.Name, &s.Identifier, &s.CapacityBytes, &s.BytesRemaining); err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}
		if idx != len(slots) {
			return nil, fmt.Errorf("slot index %d out of sequence", idx)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slots: %w", err)
	}
	return slots, nil
}

func (r *SQLiteRevisionRepo) loadSubSlots(ctx context.Context, scheduleID string, rev domain.Revision, slots []*domain.Slot) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT slot_index, name, identifier, bytes_remaining
		 FROM sub_slots WHERE schedule_id = ? AND revision = ? ORDER BY slot_index, position`,
		scheduleID, string(rev))
	if err != nil {
		return fmt.Errorf("loading sub-slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var idx int
		sub := &domain.SubSlot{}
		if err := rows.Scan(&idx, &sub.Name, &sub.Identifier, &sub.BytesRemaining); err != nil {
			return fmt.Errorf("scanning sub-slot: %w", err)
		}
		if idx < 0 || idx >= len(slots) {
			return fmt.Errorf("sub-slot references missing slot %d", idx)
		}
		slots[idx].SubSlots = append(slots[idx].SubSlots, sub)
	}
	return rows.Err()
}

func (r *SQLiteRevisionRepo) loadPlacements(ctx context.Context, scheduleID string, rev domain.Revision, slots []*domain.Slot, defs []*domain.Item) error {
	byName := make(map[string]*domain.Item, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT slot_index, position, item_name, member_slots
		 FROM placements WHERE schedule_id = ? AND revision = ?
		 ORDER BY slot_index, position, seq`,
		scheduleID, string(rev))
	if err != nil {
		return fmt.Errorf("loading placements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var idx, pos int
		var name, members string
		if err := rows.Scan(&idx, &pos, &name, &members); err != nil {
			return fmt.Errorf("scanning placement: %w", err)
		}
		def, ok := byName[name]
		if !ok {
			return fmt.Errorf("placement references undefined item %q", name)
		}
		if idx < 0 || idx >= len(slots) {
			return fmt.Errorf("placement references missing slot %d", idx)
		}
		it := def.Clone()
		if it.Slots, err = splitSlots(members); err != nil {
			return fmt.Errorf("parsing member slots of %q: %w", name, err)
		}

		slot := slots[idx]
		if pos == 0 {
			slot.Items = append(slot.Items, it)
			continue
		}
		if pos > len(slot.SubSlots) {
			return fmt.Errorf("placement references missing sub-slot %d/%d", idx, pos)
		}
		sub := slot.SubSlots[pos-1]
		sub.Items = append(sub.Items, it)
	}
	return rows.Err()
}

func (r *SQLiteRevisionRepo) PlacedItemNames(ctx context.Context, scheduleID string, rev domain.Revision) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT item_name FROM placements WHERE schedule_id = ? AND revision = ? ORDER BY item_name`,
		scheduleID, string(rev))
	if err != nil {
		return nil, fmt.Errorf("listing placed items: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning placed item: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *SQLiteRevisionRepo) Delete(ctx context.Context, scheduleID string, rev domain.Revision) error {
	return r.deleteRows(ctx, scheduleID, rev)
}

func (r *SQLiteRevisionRepo) deleteRows(ctx context.Context, scheduleID string, rev domain.Revision) error {
	for _, table := range []string{"placements", "sub_slots", "slots", "revisions"} {
		_, err := r.db.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE schedule_id = ? AND revision = ?`, scheduleID, string(rev))
		if err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}
