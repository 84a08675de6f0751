package scheduler

import (
	"testing"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/stretchr/testify/require"
)

func newSchedule(t *testing.T, slots int, slotsPerSecond float64, capacity int, opts ...ScheduleOption) *Schedule {
	t.Helper()
	s, err := New(domain.Cycle{SlotCount: slots, SlotsPerSecond: slotsPerSecond, TotalCapacityBytes: capacity}, nil, nil, opts...)
	require.NoError(t, err)
	return s
}

func item(name string, size int, rate float64) *domain.Item {
	return &domain.Item{Name: name, Kind: domain.ItemTelemetry, SizeBytes: size, RateHz: rate}
}

func linked(name string, size int, rate float64, link string) *domain.Item {
	it := item(name, size, rate)
	it.LinkID = link
	return it
}

func bitField(name string, bits int) *domain.Item {
	return &domain.Item{
		Name:      name,
		Kind:      domain.ItemTelemetry,
		RateHz:    1,
		Telemetry: &domain.TelemetryPayload{BitLength: bits},
	}
}

func itemNames(items []*domain.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

// subdivide grows slot to n sub-slots. It must only be used on empty slots.
func subdivide(t *testing.T, s *Schedule, slot, n int) {
	t.Helper()
	for s.slots[slot].SubSlotCount() < n {
		res, err := s.AddSubSlot(slot, nil)
		require.NoError(t, err)
		require.True(t, res.Applied())
	}
}
