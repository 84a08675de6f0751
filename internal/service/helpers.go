package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/repository"
	"github.com/alexanderramin/cadence/internal/scheduler"
)

// loadedSchedule is a schedule header together with its working revision
// built into an engine.
type loadedSchedule struct {
	info  *domain.ScheduleInfo
	sched *scheduler.Schedule
}

// loadSchedule builds the engine for name from its working revision and
// baselines change tracking on the committed one. Items not placed in the
// working revision form the pool.
func loadSchedule(ctx context.Context, tx db.DBTX, name string, opts []scheduler.ScheduleOption) (*loadedSchedule, error) {
	info, err := repository.NewSQLiteScheduleRepo(tx).GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading schedule %q: %w", name, err)
	}
	revisions := repository.NewSQLiteRevisionRepo(tx)

	committed, err := loadRevision(ctx, revisions, info.ID, domain.RevisionCommitted)
	if err != nil {
		return nil, err
	}
	working, err := loadRevision(ctx, revisions, info.ID, domain.RevisionWorking)
	if err != nil {
		return nil, err
	}
	if working == nil {
		working = committed
	}

	defs, err := repository.NewSQLiteItemRepo(tx).ListBySchedule(ctx, info.ID)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}

	cycle := info.Cycle
	var stored []*domain.Slot
	if working != nil {
		cycle.TotalCapacityBytes = working.TotalCapacityBytes
		stored = working.Slots
	}
	sched, err := scheduler.New(cycle, stored, unplaced(defs, stored), opts...)
	if err != nil {
		return nil, fmt.Errorf("building schedule %q: %w", name, err)
	}
	if committed != nil {
		sched.Restore(committed.Slots)
	}
	return &loadedSchedule{info: info, sched: sched}, nil
}

func loadRevision(ctx context.Context, repo repository.RevisionRepo, scheduleID string, rev domain.Revision) (*repository.StoredRevision, error) {
	stored, err := repo.Load(ctx, scheduleID, rev)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s revision: %w", rev, err)
	}
	if got := scheduler.Fingerprint(stored.Slots); got != stored.Fingerprint {
		return nil, fmt.Errorf("%s revision fingerprint %s, computed %s: %w",
			rev, formatFingerprint(stored.Fingerprint), formatFingerprint(got), domain.ErrRevisionCorrupt)
	}
	return stored, nil
}

// unplaced returns the definitions that appear nowhere in slots.
func unplaced(defs []*domain.Item, slots []*domain.Slot) []*domain.Item {
	placed := make(map[string]bool)
	for _, slot := range slots {
		for _, it := range slot.Items {
			placed[it.Name] = true
		}
		for _, sub := range slot.SubSlots {
			for _, it := range sub.Items {
				placed[it.Name] = true
			}
		}
	}
	var out []*domain.Item
	for _, d := range defs {
		if !placed[d.Name] {
			out = append(out, d)
		}
	}
	return out
}

// saveRevision writes the engine's working slots as rev and keeps the
// schedule header's capacity in step.
func saveRevision(ctx context.Context, tx db.DBTX, l *loadedSchedule, rev domain.Revision) error {
	cycle := l.sched.Cycle()
	slots := l.sched.ListSlots()
	err := repository.NewSQLiteRevisionRepo(tx).Save(ctx, l.info.ID, repository.StoredRevision{
		Revision:           rev,
		TotalCapacityBytes: cycle.TotalCapacityBytes,
		Fingerprint:        scheduler.Fingerprint(slots),
		Slots:              slots,
	})
	if err != nil {
		return fmt.Errorf("saving %s revision: %w", rev, err)
	}
	if cycle.TotalCapacityBytes != l.info.Cycle.TotalCapacityBytes {
		if err := repository.NewSQLiteScheduleRepo(tx).UpdateCapacity(ctx, l.info.ID, cycle.TotalCapacityBytes); err != nil {
			return err
		}
		l.info.Cycle.TotalCapacityBytes = cycle.TotalCapacityBytes
	}
	return nil
}

func newScheduleView(name string, sched *scheduler.Schedule) contract.ScheduleView {
	cycle := sched.Cycle()
	v := contract.ScheduleView{
		Name:           name,
		Cycle:          cycle,
		Period:         cycle.Period(),
		PerSlotBytes:   cycle.PerSlotCapacity(),
		LeftoverBytes:  cycle.LeftoverBytes(),
		TotalRemaining: sched.TotalRemaining(),
		Unassigned:     contract.NewItemViews(sched.Unassigned()),
	}
	for i, slot := range sched.ListSlots() {
		v.Slots = append(v.Slots, contract.NewSlotView(i, slot))
	}
	slices.SortFunc(v.Unassigned, func(a, b contract.ItemView) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return v
}

func newMutationResponse(r *scheduler.Result) *contract.MutationResponse {
	out := &contract.MutationResponse{Outcome: string(r.Outcome), Placed: r.Placed, Removed: r.Removed}
	for _, it := range r.Evacuated {
		out.Evacuated = append(out.Evacuated, it.Name)
	}
	return out
}

func newOptionViews(combos []scheduler.Combination) []contract.OptionView {
	out := make([]contract.OptionView, len(combos))
	for i, c := range combos {
		out[i] = contract.OptionView{
			Index:    i,
			Kind:     string(c.Kind),
			Label:    c.String(),
			Slots:    slices.Clone(c.Slots),
			SubSlots: slices.Clone(c.SubSlots),
		}
	}
	return out
}

func toTarget(t contract.TargetRef) scheduler.Target {
	return scheduler.Target{Slot: t.Slot, Sub: t.Sub}
}

func formatFingerprint(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s: %w", msg, domain.ErrValidation)
}
