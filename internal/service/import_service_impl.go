package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/importer"
	"github.com/alexanderramin/cadence/internal/repository"
	"github.com/alexanderramin/cadence/internal/scheduler"
	"github.com/spf13/afero"
)

type importService struct {
	fs       afero.Fs
	uow      db.UnitOfWork
	opts     []scheduler.ScheduleOption
	observer UseCaseObserver
}

func NewImportService(fs afero.Fs, uow db.UnitOfWork, opts []scheduler.ScheduleOption, observers ...UseCaseObserver) ImportService {
	return &importService{fs: fs, uow: uow, opts: opts, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportSchedule(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadImportSchema(s.fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.ImportScheduleFromSchema(ctx, schema)
}

// ImportScheduleFromSchema creates the schedule, its items, layout and
// placements in one transaction and commits the result.
func (s *importService) ImportScheduleFromSchema(ctx context.Context, schema *importer.ImportSchema) (result *ImportResult, err error) {
	fields := map[string]any{FieldSchedule: schema.Schedule.Name}
	defer observe(ctx, s.observer, "import-schedule", time.Now(), fields, &err)

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}
	generated := importer.Convert(schema)
	fields["item_count"] = len(generated.Items)
	fields["assignment_count"] = len(generated.Assignments)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteScheduleRepo(tx).Create(ctx, generated.Info); err != nil {
			return fmt.Errorf("creating schedule: %w", err)
		}
		items := repository.NewSQLiteItemRepo(tx)
		for _, it := range generated.Items {
			if err := items.Create(ctx, generated.Info.ID, it); err != nil {
				return fmt.Errorf("creating item %q: %w", it.Name, err)
			}
		}

		sched, err := scheduler.New(generated.Info.Cycle, nil, generated.Items, s.opts...)
		if err != nil {
			return err
		}
		if err := applyLayout(sched, generated.Layout); err != nil {
			return err
		}
		if err := applyAssignments(sched, generated.Items, generated.Assignments); err != nil {
			return err
		}
		fields[FieldOverSubscribed] = len(sched.OverSubscribed())

		l := &loadedSchedule{info: generated.Info, sched: sched}
		if err := saveRevision(ctx, tx, l, domain.RevisionCommitted); err != nil {
			return err
		}
		return saveRevision(ctx, tx, l, domain.RevisionWorking)
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Schedule:        generated.Info,
		ItemCount:       len(generated.Items),
		AssignmentCount: len(generated.Assignments),
	}, nil
}

func applyLayout(sched *scheduler.Schedule, layout []importer.SlotImport) error {
	for _, s := range layout {
		// The schedule is empty, so restructuring never needs confirmation.
		for range max(len(s.SubSlots)-1, 0) {
			if _, err := sched.AddSubSlot(s.Index, nil); err != nil {
				return fmt.Errorf("slots[%d]: %w", s.Index, err)
			}
		}
		if s.Name != "" {
			if err := sched.RenameSlot(scheduler.Target{Slot: s.Index}, s.Name); err != nil {
				return fmt.Errorf("slots[%d]: %w", s.Index, err)
			}
		}
		if s.Identifier != "" {
			if err := sched.SetIdentifier(scheduler.Target{Slot: s.Index}, s.Identifier); err != nil {
				return fmt.Errorf("slots[%d]: %w", s.Index, err)
			}
		}
		for j, sub := range s.SubSlots {
			t := scheduler.Target{Slot: s.Index, Sub: j + 1}
			if sub.Name != "" {
				if err := sched.RenameSlot(t, sub.Name); err != nil {
					return fmt.Errorf("slots[%d].sub_slots[%d]: %w", s.Index, j, err)
				}
			}
			if sub.Identifier != "" {
				if err := sched.SetIdentifier(t, sub.Identifier); err != nil {
					return fmt.Errorf("slots[%d].sub_slots[%d]: %w", s.Index, j, err)
				}
			}
		}
	}
	return nil
}

func applyAssignments(sched *scheduler.Schedule, defs []*domain.Item, assignments []importer.Assignment) error {
	for _, a := range assignments {
		def := defs[domain.IndexOfItem(defs, a.Item)]
		if def.Linked() {
			// An earlier link mate's assignment already carried this item.
			if _, err := sched.PoolItem(def.Name); errors.Is(err, domain.ErrNotFound) {
				continue
			}
		}
		if a.Option != nil {
			if _, err := assignOption(sched, def, *a.Option); err != nil {
				return fmt.Errorf("assigning %q: %w", a.Item, err)
			}
			continue
		}
		if _, err := sched.AddItem(def, a.Targets...); err != nil {
			return fmt.Errorf("assigning %q: %w", a.Item, err)
		}
	}
	return nil
}
