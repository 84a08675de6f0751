package importer

import (
	"slices"
	"time"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/scheduler"
	"github.com/google/uuid"
)

// GeneratedSchedule is a converted import, ready to be applied to a fresh
// schedule.
type GeneratedSchedule struct {
	Info        *domain.ScheduleInfo
	Items       []*domain.Item
	Layout      []SlotImport
	Assignments []Assignment
}

// Assignment is a placement to apply once the layout is in place.
type Assignment struct {
	Item    string
	Option  *int
	Targets []scheduler.Target
}

// Convert transforms a validated ImportSchema into domain objects ready for
// persistence. Call ValidateImportSchema first; Convert assumes the schema
// is valid.
func Convert(schema *ImportSchema) *GeneratedSchedule {
	now := time.Now().UTC().Truncate(time.Second)
	out := &GeneratedSchedule{
		Info: &domain.ScheduleInfo{
			ID:   uuid.New().String(),
			Name: schema.Schedule.Name,
			Cycle: domain.Cycle{
				SlotCount:          schema.Schedule.SlotCount,
				SlotsPerSecond:     schema.Schedule.SlotsPerSecond,
				TotalCapacityBytes: schema.Schedule.TotalCapacityBytes,
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for _, it := range schema.Items {
		out.Items = append(out.Items, convertItem(it))
	}

	out.Layout = slices.Clone(schema.Slots)
	slices.SortFunc(out.Layout, func(a, b SlotImport) int { return a.Index - b.Index })

	for _, a := range schema.Assignments {
		conv := Assignment{Item: a.Item, Option: a.Option}
		for _, t := range a.Targets {
			conv.Targets = append(conv.Targets, scheduler.Target{Slot: t.Slot, Sub: t.Sub})
		}
		out.Assignments = append(out.Assignments, conv)
	}
	return out
}

func convertItem(in ItemImport) *domain.Item {
	it := &domain.Item{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Kind:      domain.ItemKind(in.Kind),
		SizeBytes: in.SizeBytes,
		RateHz:    in.RateHz,
		LinkID:    in.LinkID,
	}
	switch it.Kind {
	case domain.ItemTelemetry:
		it.Telemetry = &domain.TelemetryPayload{BitLength: in.BitLength}
		if in.BitLength > 0 && it.SizeBytes == 0 {
			it.SizeBytes = (in.BitLength + 7) / 8
		}
	case domain.ItemApplication:
		it.Application = &domain.ApplicationPayload{}
		if in.AppID != nil {
			it.Application.AppID = uint16(*in.AppID)
		}
	}
	return it
}
