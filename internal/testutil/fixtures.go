package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/google/uuid"
)

var testNameCounter atomic.Int64

// Schedule options
type ScheduleOption func(*domain.ScheduleInfo)

func WithCycle(slotCount int, slotsPerSecond float64, totalBytes int) ScheduleOption {
	return func(s *domain.ScheduleInfo) {
		s.Cycle = domain.Cycle{
			SlotCount:          slotCount,
			SlotsPerSecond:     slotsPerSecond,
			TotalCapacityBytes: totalBytes,
		}
	}
}

// NewTestSchedule returns a schedule header with a 4-slot, 4 Hz, 400-byte
// cycle unless overridden.
func NewTestSchedule(name string, opts ...ScheduleOption) *domain.ScheduleInfo {
	now := time.Now().UTC().Truncate(time.Second)
	s := &domain.ScheduleInfo{
		ID:        uuid.New().String(),
		Name:      name,
		Cycle:     domain.Cycle{SlotCount: 4, SlotsPerSecond: 4, TotalCapacityBytes: 400},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Item options
type ItemOption func(*domain.Item)

func WithSize(bytes int) ItemOption {
	return func(it *domain.Item) {
		it.SizeBytes = bytes
	}
}

func WithRate(hz float64) ItemOption {
	return func(it *domain.Item) {
		it.RateHz = hz
	}
}

func WithLink(linkID string) ItemOption {
	return func(it *domain.Item) {
		it.LinkID = linkID
	}
}

func WithBitLength(bits int) ItemOption {
	return func(it *domain.Item) {
		it.Kind = domain.ItemTelemetry
		it.Application = nil
		it.Telemetry = &domain.TelemetryPayload{BitLength: bits}
		it.SizeBytes = (bits + 7) / 8
	}
}

func WithApplication(appID uint16) ItemOption {
	return func(it *domain.Item) {
		it.Kind = domain.ItemApplication
		it.Telemetry = nil
		it.Application = &domain.ApplicationPayload{AppID: appID}
	}
}

// NewTestItem returns an 8-byte telemetry item at 4 Hz. An empty name
// generates a unique one.
func NewTestItem(name string, opts ...ItemOption) *domain.Item {
	if name == "" {
		name = fmt.Sprintf("VAR%d", testNameCounter.Add(1))
	}
	it := &domain.Item{
		ID:        uuid.New().String(),
		Name:      name,
		Kind:      domain.ItemTelemetry,
		SizeBytes: 8,
		RateHz:    4,
		Telemetry: &domain.TelemetryPayload{},
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}
