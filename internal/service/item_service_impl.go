package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/repository"
	"github.com/google/uuid"
)

type itemService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewItemService(uow db.UnitOfWork, observers ...UseCaseObserver) ItemService {
	return &itemService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// Define adds an item definition to the schedule's pool.
func (s *itemService) Define(ctx context.Context, schedule string, it *domain.Item) (err error) {
	fields := map[string]any{FieldSchedule: schedule, "item": it.Name, "kind": string(it.Kind)}
	defer observe(ctx, s.observer, "define-item", time.Now(), fields, &err)

	if err := normalizeItem(it); err != nil {
		return err
	}
	if it.ID == "" {
		it.ID = uuid.New().String()
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		info, err := repository.NewSQLiteScheduleRepo(tx).GetByName(ctx, schedule)
		if err != nil {
			return fmt.Errorf("loading schedule %q: %w", schedule, err)
		}
		items := repository.NewSQLiteItemRepo(tx)
		if _, err := items.GetByName(ctx, info.ID, it.Name); err == nil {
			return &domain.ValidationError{Rule: domain.RuleDuplicateName, Field: "item.name", Value: it.Name, Msg: "already defined"}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return items.Create(ctx, info.ID, it)
	})
}

// normalizeItem validates a definition and fills the payload for its kind.
func normalizeItem(it *domain.Item) error {
	it.Name = strings.TrimSpace(it.Name)
	if it.Name == "" {
		return &domain.ValidationError{Rule: domain.RuleNameEmpty, Field: "item.name", Msg: "is required"}
	}
	if !domain.ValidItemKinds[string(it.Kind)] {
		return &domain.ValidationError{Rule: domain.RuleItem, Field: "item.kind", Value: string(it.Kind), Msg: "must be telemetry or application"}
	}
	if math.IsNaN(it.RateHz) || math.IsInf(it.RateHz, 0) || it.RateHz <= 0 {
		return &domain.ValidationError{Rule: domain.RuleItem, Field: "item.rate_hz", Value: fmt.Sprint(it.RateHz), Msg: "must be a positive number"}
	}
	if it.SizeBytes < 0 {
		return &domain.ValidationError{Rule: domain.RuleItem, Field: "item.size_bytes", Value: fmt.Sprint(it.SizeBytes), Msg: "must not be negative"}
	}

	switch it.Kind {
	case domain.ItemTelemetry:
		it.Application = nil
		if it.Telemetry == nil {
			it.Telemetry = &domain.TelemetryPayload{}
		}
		if it.Telemetry.BitLength < 0 {
			return &domain.ValidationError{Rule: domain.RuleItem, Field: "item.bit_length", Value: fmt.Sprint(it.Telemetry.BitLength), Msg: "must not be negative"}
		}
		if it.Telemetry.BitLength > 0 && it.SizeBytes == 0 {
			it.SizeBytes = (it.Telemetry.BitLength + 7) / 8
		}
	case domain.ItemApplication:
		it.Telemetry = nil
		if it.Application == nil {
			it.Application = &domain.ApplicationPayload{}
		}
	}
	return nil
}

// List returns every definition with whether the working revision places it.
func (s *itemService) List(ctx context.Context, schedule string) ([]contract.ItemEntry, error) {
	var out []contract.ItemEntry
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		info, err := repository.NewSQLiteScheduleRepo(tx).GetByName(ctx, schedule)
		if err != nil {
			return fmt.Errorf("loading schedule %q: %w", schedule, err)
		}
		defs, err := repository.NewSQLiteItemRepo(tx).ListBySchedule(ctx, info.ID)
		if err != nil {
			return err
		}
		placed, err := repository.NewSQLiteRevisionRepo(tx).PlacedItemNames(ctx, info.ID, domain.RevisionWorking)
		if err != nil {
			return err
		}
		for _, d := range defs {
			entry := contract.ItemEntry{
				ItemView: contract.NewItemView(d),
				Assigned: slices.Contains(placed, d.Name),
			}
			if d.Application != nil {
				id := d.Application.AppID
				entry.AppID = &id
			}
			out = append(out, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a definition. Items placed in either revision are refused
// so stored revisions never reference a missing definition.
func (s *itemService) Delete(ctx context.Context, schedule, name string) (err error) {
	fields := map[string]any{FieldSchedule: schedule, "item": name}
	defer observe(ctx, s.observer, "delete-item", time.Now(), fields, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		info, err := repository.NewSQLiteScheduleRepo(tx).GetByName(ctx, schedule)
		if err != nil {
			return fmt.Errorf("loading schedule %q: %w", schedule, err)
		}
		revisions := repository.NewSQLiteRevisionRepo(tx)
		for _, rev := range []domain.Revision{domain.RevisionWorking, domain.RevisionCommitted} {
			placed, err := revisions.PlacedItemNames(ctx, info.ID, rev)
			if err != nil {
				return err
			}
			if slices.Contains(placed, name) {
				return &domain.ValidationError{
					Rule:  domain.RuleItem,
					Field: "item",
					Value: name,
					Msg:   fmt.Sprintf("is placed in the %s revision; unassign and commit first", rev),
				}
			}
		}
		return repository.NewSQLiteItemRepo(tx).Delete(ctx, info.ID, name)
	})
}
