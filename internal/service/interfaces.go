package service

import (
	"context"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/importer"
	"github.com/alexanderramin/cadence/internal/scheduler"
)

// ScheduleService edits the working revision of named schedules. Every
// mutation loads, changes and saves the working revision in one transaction.
type ScheduleService interface {
	Create(ctx context.Context, req contract.CreateScheduleRequest) (*domain.ScheduleInfo, error)
	List(ctx context.Context) ([]*domain.ScheduleInfo, error)
	Delete(ctx context.Context, name string) error
	Open(ctx context.Context, name string) (*contract.ScheduleView, error)
	Status(ctx context.Context, name string) (*contract.StatusResponse, error)
	Options(ctx context.Context, req contract.OptionsRequest) (*contract.OptionsResponse, error)
	Assign(ctx context.Context, req contract.AssignRequest) (*contract.MutationResponse, error)
	Unassign(ctx context.Context, name string, slot int, items []string) (*contract.MutationResponse, error)
	AddSubSlot(ctx context.Context, name string, slot int, confirm scheduler.Confirmer) (*contract.MutationResponse, error)
	DeleteSubSlot(ctx context.Context, name string, slot int, confirm scheduler.Confirmer) (*contract.MutationResponse, error)
	ChangeCapacity(ctx context.Context, name string, totalBytes int) error
	Rename(ctx context.Context, name string, t contract.TargetRef, newName string) error
	SetIdentifier(ctx context.Context, name string, t contract.TargetRef, id string) error
	Commit(ctx context.Context, name string) error
	Revert(ctx context.Context, name string) error
}

// ItemService manages the item definitions a schedule draws from.
type ItemService interface {
	Define(ctx context.Context, schedule string, it *domain.Item) error
	List(ctx context.Context, schedule string) ([]contract.ItemEntry, error)
	Delete(ctx context.Context, schedule, name string) error
}

// ImportResult holds the outcome of a schedule import.
type ImportResult struct {
	Schedule        *domain.ScheduleInfo
	ItemCount       int
	AssignmentCount int
}

type ImportService interface {
	ImportSchedule(ctx context.Context, filePath string) (*ImportResult, error)
	ImportScheduleFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
}
