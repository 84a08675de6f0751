package importer

import (
	"fmt"
	"math"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/scheduler"
)

// ValidateImportSchema checks the import schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	errs = append(errs, validateSchedule(&schema.Schedule)...)

	itemNames := make(map[string]bool)
	errs = append(errs, validateItems(schema.Items, itemNames)...)
	errs = append(errs, validateSlots(schema.Slots, schema.Schedule.SlotCount)...)
	errs = append(errs, validateAssignments(schema.Assignments, itemNames)...)

	return errs
}

func validateSchedule(s *ScheduleImport) []error {
	var errs []error

	if s.Name == "" {
		errs = append(errs, fmt.Errorf("schedule.name is required"))
	}
	if s.SlotCount <= 0 {
		errs = append(errs, fmt.Errorf("schedule.slot_count must be positive, got %d", s.SlotCount))
	}
	if s.SlotsPerSecond <= 0 || math.IsNaN(s.SlotsPerSecond) || math.IsInf(s.SlotsPerSecond, 0) {
		errs = append(errs, fmt.Errorf("schedule.slots_per_second must be positive, got %g", s.SlotsPerSecond))
	}
	if s.TotalCapacityBytes < 0 {
		errs = append(errs, fmt.Errorf("schedule.total_capacity_bytes must not be negative, got %d", s.TotalCapacityBytes))
	}
	return errs
}

func validateItems(items []ItemImport, names map[string]bool) []error {
	var errs []error
	for i, it := range items {
		prefix := fmt.Sprintf("items[%d]", i)
		if it.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else if names[it.Name] {
			errs = append(errs, fmt.Errorf("%s.name %q is duplicated", prefix, it.Name))
		} else {
			names[it.Name] = true
		}
		if !domain.ValidItemKinds[it.Kind] {
			errs = append(errs, fmt.Errorf("%s.kind %q is invalid (telemetry or application)", prefix, it.Kind))
		}
		if it.SizeBytes < 0 {
			errs = append(errs, fmt.Errorf("%s.size_bytes must not be negative", prefix))
		}
		if it.BitLength < 0 {
			errs = append(errs, fmt.Errorf("%s.bit_length must not be negative", prefix))
		}
		if it.BitLength > 0 && it.Kind != string(domain.ItemTelemetry) {
			errs = append(errs, fmt.Errorf("%s.bit_length is only valid for telemetry items", prefix))
		}
		if it.AppID != nil {
			if it.Kind != string(domain.ItemApplication) {
				errs = append(errs, fmt.Errorf("%s.app_id is only valid for application items", prefix))
			} else if *it.AppID < 0 || *it.AppID > math.MaxUint16 {
				errs = append(errs, fmt.Errorf("%s.app_id %d out of range", prefix, *it.AppID))
			}
		}
		if it.RateHz <= 0 || math.IsNaN(it.RateHz) || math.IsInf(it.RateHz, 0) {
			errs = append(errs, fmt.Errorf("%s.rate_hz must be positive, got %g", prefix, it.RateHz))
		}
	}
	return errs
}

func validateSlots(slots []SlotImport, slotCount int) []error {
	var errs []error
	seen := make(map[int]bool)
	for i, s := range slots {
		prefix := fmt.Sprintf("slots[%d]", i)
		if s.Index < 0 || (slotCount > 0 && s.Index >= slotCount) {
			errs = append(errs, fmt.Errorf("%s.index %d out of range", prefix, s.Index))
		} else if seen[s.Index] {
			errs = append(errs, fmt.Errorf("%s.index %d is duplicated", prefix, s.Index))
		}
		seen[s.Index] = true
		if len(s.SubSlots) == 1 {
			errs = append(errs, fmt.Errorf("%s.sub_slots must list at least 2 sub-slots when present", prefix))
		}
		if s.Identifier != "" {
			if _, err := scheduler.ParseIdentifier(s.Identifier); err != nil {
				errs = append(errs, fmt.Errorf("%s.identifier: %w", prefix, err))
			}
		}
		for j, sub := range s.SubSlots {
			if sub.Identifier == "" {
				continue
			}
			if _, err := scheduler.ParseIdentifier(sub.Identifier); err != nil {
				errs = append(errs, fmt.Errorf("%s.sub_slots[%d].identifier: %w", prefix, j, err))
			}
		}
	}
	return errs
}

func validateAssignments(assignments []AssignmentImport, itemNames map[string]bool) []error {
	var errs []error
	assigned := make(map[string]bool)
	for i, a := range assignments {
		prefix := fmt.Sprintf("assignments[%d]", i)
		if !itemNames[a.Item] {
			errs = append(errs, fmt.Errorf("%s.item %q references an undefined item", prefix, a.Item))
		}
		if assigned[a.Item] {
			errs = append(errs, fmt.Errorf("%s.item %q is assigned more than once", prefix, a.Item))
		}
		assigned[a.Item] = true
		switch {
		case a.Option == nil && len(a.Targets) == 0:
			errs = append(errs, fmt.Errorf("%s needs an option or targets", prefix))
		case a.Option != nil && len(a.Targets) > 0:
			errs = append(errs, fmt.Errorf("%s cannot set both option and targets", prefix))
		case a.Option != nil && *a.Option < 0:
			errs = append(errs, fmt.Errorf("%s.option must not be negative", prefix))
		}
		for j, t := range a.Targets {
			if t.Slot < 0 || t.Sub < 0 {
				errs = append(errs, fmt.Errorf("%s.targets[%d] must not be negative", prefix, j))
			}
		}
	}
	return errs
}
