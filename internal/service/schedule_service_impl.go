package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/repository"
	"github.com/alexanderramin/cadence/internal/scheduler"
	"github.com/google/uuid"
)

type scheduleService struct {
	schedules repository.ScheduleRepo
	uow       db.UnitOfWork
	opts      []scheduler.ScheduleOption
	observer  UseCaseObserver
}

func NewScheduleService(
	schedules repository.ScheduleRepo,
	uow db.UnitOfWork,
	opts []scheduler.ScheduleOption,
	observers ...UseCaseObserver,
) ScheduleService {
	return &scheduleService{
		schedules: schedules,
		uow:       uow,
		opts:      opts,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *scheduleService) Create(ctx context.Context, req contract.CreateScheduleRequest) (info *domain.ScheduleInfo, err error) {
	fields := map[string]any{FieldSchedule: req.Name}
	defer observe(ctx, s.observer, "create-schedule", time.Now(), fields, &err)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &domain.ValidationError{Rule: domain.RuleNameEmpty, Field: "schedule.name", Msg: "is required"}
	}
	sched, err := scheduler.New(req.Cycle, nil, nil, s.opts...)
	if err != nil {
		return nil, err
	}

	now := nowUTC()
	info = &domain.ScheduleInfo{
		ID:        uuid.New().String(),
		Name:      name,
		Cycle:     req.Cycle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteScheduleRepo(tx)
		if _, err := repo.GetByName(ctx, name); err == nil {
			return &domain.ValidationError{Rule: domain.RuleDuplicateName, Field: "schedule.name", Value: name, Msg: "already exists"}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := repo.Create(ctx, info); err != nil {
			return err
		}
		l := &loadedSchedule{info: info, sched: sched}
		if err := saveRevision(ctx, tx, l, domain.RevisionCommitted); err != nil {
			return err
		}
		return saveRevision(ctx, tx, l, domain.RevisionWorking)
	})
	if err != nil {
		return nil, err
	}
	fields[FieldOverSubscribed] = 0
	return info, nil
}

func (s *scheduleService) List(ctx context.Context) ([]*domain.ScheduleInfo, error) {
	return s.schedules.List(ctx)
}

func (s *scheduleService) Delete(ctx context.Context, name string) (err error) {
	defer observe(ctx, s.observer, "delete-schedule", time.Now(), map[string]any{FieldSchedule: name}, &err)

	info, err := s.schedules.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("loading schedule %q: %w", name, err)
	}
	return s.schedules.Delete(ctx, info.ID)
}

func (s *scheduleService) Open(ctx context.Context, name string) (*contract.ScheduleView, error) {
	var view contract.ScheduleView
	err := s.read(ctx, name, func(l *loadedSchedule) error {
		view = newScheduleView(l.info.Name, l.sched)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *scheduleService) Status(ctx context.Context, name string) (*contract.StatusResponse, error) {
	var resp contract.StatusResponse
	err := s.read(ctx, name, func(l *loadedSchedule) error {
		resp = contract.StatusResponse{
			View:           newScheduleView(l.info.Name, l.sched),
			Changed:        l.sched.IsChanged(),
			Diff:           l.sched.Diff(),
			OverSubscribed: l.sched.OverSubscribed(),
			Fingerprint:    formatFingerprint(scheduler.Fingerprint(l.sched.ListSlots())),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *scheduleService) Options(ctx context.Context, req contract.OptionsRequest) (*contract.OptionsResponse, error) {
	resp := &contract.OptionsResponse{RateHz: req.RateHz}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		l, err := loadSchedule(ctx, tx, req.Schedule, s.opts)
		if err != nil {
			return err
		}
		if req.Item != "" {
			def, err := repository.NewSQLiteItemRepo(tx).GetByName(ctx, l.info.ID, req.Item)
			if err != nil {
				return err
			}
			resp.RateHz = def.RateHz
		}
		combos, err := l.sched.EnumerateOptions(resp.RateHz)
		if err != nil {
			return err
		}
		resp.Options = newOptionViews(combos)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *scheduleService) Assign(ctx context.Context, req contract.AssignRequest) (resp *contract.MutationResponse, err error) {
	fields := map[string]any{FieldSchedule: req.Schedule, "item": req.Item}
	defer observe(ctx, s.observer, "assign", time.Now(), fields, &err)

	if (req.Option == nil) == (len(req.Targets) == 0) {
		return nil, &domain.ValidationError{Rule: domain.RuleIndexRange, Field: "assign", Msg: "needs exactly one of an option or targets"}
	}

	err = s.mutate(ctx, req.Schedule, fields, func(ctx context.Context, tx db.DBTX, l *loadedSchedule) (*scheduler.Result, error) {
		def, err := repository.NewSQLiteItemRepo(tx).GetByName(ctx, l.info.ID, req.Item)
		if err != nil {
			return nil, err
		}
		if req.Option != nil {
			return assignOption(l.sched, def, *req.Option)
		}
		targets := make([]scheduler.Target, len(req.Targets))
		for i, t := range req.Targets {
			targets[i] = toTarget(t)
		}
		return l.sched.AddItem(def, targets...)
	}, &resp)
	return resp, err
}

// assignOption places def at the option-th combination for its rate.
func assignOption(sched *scheduler.Schedule, def *domain.Item, option int) (*scheduler.Result, error) {
	combos, err := sched.EnumerateOptions(def.RateHz)
	if err != nil {
		return nil, err
	}
	if option < 0 || option >= len(combos) {
		return nil, &domain.ValidationError{
			Rule:  domain.RuleIndexRange,
			Field: "option",
			Value: fmt.Sprint(option),
			Msg:   fmt.Sprintf("must be in [0, %d)", len(combos)),
		}
	}
	return sched.AssignOption(def, combos[option])
}

func (s *scheduleService) Unassign(ctx context.Context, name string, slot int, items []string) (resp *contract.MutationResponse, err error) {
	fields := map[string]any{FieldSchedule: name, "slot": slot, "items": len(items)}
	defer observe(ctx, s.observer, "unassign", time.Now(), fields, &err)

	err = s.mutate(ctx, name, fields, func(_ context.Context, _ db.DBTX, l *loadedSchedule) (*scheduler.Result, error) {
		return l.sched.RemoveItems(items, slot)
	}, &resp)
	return resp, err
}

func (s *scheduleService) AddSubSlot(ctx context.Context, name string, slot int, confirm scheduler.Confirmer) (resp *contract.MutationResponse, err error) {
	fields := map[string]any{FieldSchedule: name, "slot": slot}
	defer observe(ctx, s.observer, "add-sub-slot", time.Now(), fields, &err)

	err = s.mutate(ctx, name, fields, func(_ context.Context, _ db.DBTX, l *loadedSchedule) (*scheduler.Result, error) {
		return l.sched.AddSubSlot(slot, confirm)
	}, &resp)
	return resp, err
}

func (s *scheduleService) DeleteSubSlot(ctx context.Context, name string, slot int, confirm scheduler.Confirmer) (resp *contract.MutationResponse, err error) {
	fields := map[string]any{FieldSchedule: name, "slot": slot}
	defer observe(ctx, s.observer, "delete-sub-slot", time.Now(), fields, &err)

	err = s.mutate(ctx, name, fields, func(_ context.Context, _ db.DBTX, l *loadedSchedule) (*scheduler.Result, error) {
		return l.sched.DeleteSubSlot(slot, confirm)
	}, &resp)
	return resp, err
}

func (s *scheduleService) ChangeCapacity(ctx context.Context, name string, totalBytes int) (err error) {
	fields := map[string]any{FieldSchedule: name, "total_capacity_bytes": totalBytes}
	defer observe(ctx, s.observer, "change-capacity", time.Now(), fields, &err)

	return s.mutate(ctx, name, fields, func(_ context.Context, _ db.DBTX, l *loadedSchedule) (*scheduler.Result, error) {
		return applied(l.sched.ChangeCapacity(totalBytes))
	}, nil)
}

func (s *scheduleService) Rename(ctx context.Context, name string, t contract.TargetRef, newName string) (err error) {
	fields := map[string]any{FieldSchedule: name, "slot": t.Slot, "sub": t.Sub}
	defer observe(ctx, s.observer, "rename", time.Now(), fields, &err)

	return s.mutate(ctx, name, fields, func(_ context.Context, _ db.DBTX, l *loadedSchedule) (*scheduler.Result, error) {
		return applied(l.sched.RenameSlot(toTarget(t), newName))
	}, nil)
}

func (s *scheduleService) SetIdentifier(ctx context.Context, name string, t contract.TargetRef, id string) (err error) {
	fields := map[string]any{FieldSchedule: name, "slot": t.Slot, "sub": t.Sub}
	defer observe(ctx, s.observer, "set-identifier", time.Now(), fields, &err)

	return s.mutate(ctx, name, fields, func(_ context.Context, _ db.DBTX, l *loadedSchedule) (*scheduler.Result, error) {
		return applied(l.sched.SetIdentifier(toTarget(t), id))
	}, nil)
}

// Commit makes the working revision the new committed baseline.
func (s *scheduleService) Commit(ctx context.Context, name string) (err error) {
	fields := map[string]any{FieldSchedule: name}
	defer observe(ctx, s.observer, "commit", time.Now(), fields, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		l, err := loadSchedule(ctx, tx, name, s.opts)
		if err != nil {
			return err
		}
		fields["changed"] = l.sched.IsChanged()
		fields[FieldOverSubscribed] = len(l.sched.OverSubscribed())
		if err := saveRevision(ctx, tx, l, domain.RevisionCommitted); err != nil {
			return err
		}
		return saveRevision(ctx, tx, l, domain.RevisionWorking)
	})
}

// Revert discards the working revision, capacity included.
func (s *scheduleService) Revert(ctx context.Context, name string) (err error) {
	fields := map[string]any{FieldSchedule: name}
	defer observe(ctx, s.observer, "revert", time.Now(), fields, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		info, err := repository.NewSQLiteScheduleRepo(tx).GetByName(ctx, name)
		if err != nil {
			return fmt.Errorf("loading schedule %q: %w", name, err)
		}
		revisions := repository.NewSQLiteRevisionRepo(tx)
		if err := revisions.Delete(ctx, info.ID, domain.RevisionWorking); err != nil {
			return err
		}
		l, err := loadSchedule(ctx, tx, name, s.opts)
		if err != nil {
			return err
		}
		fields[FieldOverSubscribed] = len(l.sched.OverSubscribed())
		return saveRevision(ctx, tx, l, domain.RevisionWorking)
	})
}

// read runs fn against a freshly loaded schedule without saving.
func (s *scheduleService) read(ctx context.Context, name string, fn func(l *loadedSchedule) error) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		l, err := loadSchedule(ctx, tx, name, s.opts)
		if err != nil {
			return err
		}
		return fn(l)
	})
}

type mutation func(ctx context.Context, tx db.DBTX, l *loadedSchedule) (*scheduler.Result, error)

// mutate loads the working revision, applies fn and saves the result when
// fn reports an applied change. A pending confirmation leaves the store
// untouched.
func (s *scheduleService) mutate(ctx context.Context, name string, fields map[string]any, fn mutation, out **contract.MutationResponse) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		l, err := loadSchedule(ctx, tx, name, s.opts)
		if err != nil {
			return err
		}
		result, err := fn(ctx, tx, l)
		if err != nil {
			return err
		}
		if out != nil {
			*out = newMutationResponse(result)
		}
		fields[FieldOverSubscribed] = len(l.sched.OverSubscribed())
		if !result.Applied() {
			fields["outcome"] = string(result.Outcome)
			return nil
		}
		return saveRevision(ctx, tx, l, domain.RevisionWorking)
	})
}

// applied adapts an error-only engine call to a mutation result.
func applied(err error) (*scheduler.Result, error) {
	if err != nil {
		return nil, err
	}
	return &scheduler.Result{Outcome: scheduler.OutcomeApplied}, nil
}
