package repository

import (
	"context"

	"github.com/alexanderramin/cadence/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist. It is the
// domain sentinel so callers can match it at any layer.
var ErrNotFound = domain.ErrNotFound

// StoredRevision is one persisted copy of a schedule's slots.
type StoredRevision struct {
	Revision           domain.Revision
	TotalCapacityBytes int
	Fingerprint        uint64
	Slots              []*domain.Slot
}

type ScheduleRepo interface {
	Create(ctx context.Context, s *domain.ScheduleInfo) error
	GetByID(ctx context.Context, id string) (*domain.ScheduleInfo, error)
	GetByName(ctx context.Context, name string) (*domain.ScheduleInfo, error)
	List(ctx context.Context) ([]*domain.ScheduleInfo, error)
	UpdateCapacity(ctx context.Context, id string, totalBytes int) error
	Delete(ctx context.Context, id string) error
}

type ItemRepo interface {
	Create(ctx context.Context, scheduleID string, it *domain.Item) error
	GetByName(ctx context.Context, scheduleID, name string) (*domain.Item, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.Item, error)
	Delete(ctx context.Context, scheduleID, name string) error
}

type RevisionRepo interface {
	// Save replaces the stored revision of a schedule.
	Save(ctx context.Context, scheduleID string, rev StoredRevision) error
	// Load returns the stored revision with items resolved against the
	// schedule's item definitions.
	Load(ctx context.Context, scheduleID string, rev domain.Revision) (*StoredRevision, error)
	// PlacedItemNames lists the distinct item names placed in a revision.
	PlacedItemNames(ctx context.Context, scheduleID string, rev domain.Revision) ([]string, error)
	Delete(ctx context.Context, scheduleID string, rev domain.Revision) error
}
