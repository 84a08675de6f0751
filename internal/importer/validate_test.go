package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptrInt(i int) *int { return &i }

func validMinimalSchema() *ImportSchema {
	return &ImportSchema{
		Schedule: ScheduleImport{Name: "downlink", SlotCount: 4, SlotsPerSecond: 4, TotalCapacityBytes: 400},
		Items: []ItemImport{
			{Name: "VAR1", Kind: "telemetry", SizeBytes: 8, RateHz: 4},
		},
	}
}

func TestValidateImportSchema_ValidMinimal(t *testing.T) {
	assert.Empty(t, ValidateImportSchema(validMinimalSchema()))
}

func TestValidateImportSchema_ValidFull(t *testing.T) {
	schema := validMinimalSchema()
	schema.Items = append(schema.Items,
		ItemImport{Name: "APP1", Kind: "application", SizeBytes: 16, AppID: ptrInt(7), RateHz: 1},
		ItemImport{Name: "FLAG", Kind: "telemetry", BitLength: 3, RateHz: 0.5, LinkID: "g1"},
	)
	schema.Slots = []SlotImport{
		{Index: 0, Name: "HK", Identifier: "0x10"},
		{Index: 1, SubSlots: []SubSlotImport{{Identifier: "0x20"}, {Name: "FAST"}}},
	}
	schema.Assignments = []AssignmentImport{
		{Item: "VAR1", Option: ptrInt(0)},
		{Item: "FLAG", Targets: []TargetImport{{Slot: 1, Sub: 2}}},
	}
	assert.Empty(t, ValidateImportSchema(schema))
}

func TestValidateImportSchema_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *ImportSchema)
		want   string
	}{
		{"missing schedule name", func(s *ImportSchema) { s.Schedule.Name = "" }, "schedule.name is required"},
		{"zero slots", func(s *ImportSchema) { s.Schedule.SlotCount = 0 }, "slot_count must be positive"},
		{"zero frequency", func(s *ImportSchema) { s.Schedule.SlotsPerSecond = 0 }, "slots_per_second must be positive"},
		{"negative capacity", func(s *ImportSchema) { s.Schedule.TotalCapacityBytes = -1 }, "must not be negative"},
		{"duplicate item", func(s *ImportSchema) { s.Items = append(s.Items, s.Items[0]) }, "is duplicated"},
		{"bad kind", func(s *ImportSchema) { s.Items[0].Kind = "blob" }, "kind \"blob\" is invalid"},
		{"zero rate", func(s *ImportSchema) { s.Items[0].RateHz = 0 }, "rate_hz must be positive"},
		{"app id on telemetry", func(s *ImportSchema) { s.Items[0].AppID = ptrInt(1) }, "app_id is only valid"},
		{"slot out of range", func(s *ImportSchema) { s.Slots = []SlotImport{{Index: 4}} }, "index 4 out of range"},
		{"single sub-slot", func(s *ImportSchema) {
			s.Slots = []SlotImport{{Index: 0, SubSlots: []SubSlotImport{{Name: "A"}}}}
		}, "at least 2 sub-slots"},
		{"bad identifier", func(s *ImportSchema) { s.Slots = []SlotImport{{Index: 0, Identifier: "zz"}} }, "identifier"},
		{"unknown item", func(s *ImportSchema) {
			s.Assignments = []AssignmentImport{{Item: "NOPE", Option: ptrInt(0)}}
		}, "undefined item"},
		{"option and targets", func(s *ImportSchema) {
			s.Assignments = []AssignmentImport{{Item: "VAR1", Option: ptrInt(0), Targets: []TargetImport{{Slot: 0}}}}
		}, "cannot set both"},
		{"no placement", func(s *ImportSchema) {
			s.Assignments = []AssignmentImport{{Item: "VAR1"}}
		}, "needs an option or targets"},
		{"assigned twice", func(s *ImportSchema) {
			s.Assignments = []AssignmentImport{{Item: "VAR1", Option: ptrInt(0)}, {Item: "VAR1", Option: ptrInt(1)}}
		}, "more than once"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := validMinimalSchema()
			tt.mutate(schema)
			errs := ValidateImportSchema(schema)
			assert.NotEmpty(t, errs)
			assert.True(t, containsError(errs, tt.want), "expected an error containing %q, got %v", tt.want, errs)
		})
	}
}

func TestValidateImportSchema_CollectsAllErrors(t *testing.T) {
	schema := &ImportSchema{Items: []ItemImport{{}}}
	errs := ValidateImportSchema(schema)
	// name, slot_count, slots_per_second, item name, item kind, item rate
	assert.GreaterOrEqual(t, len(errs), 6)
}

func containsError(errs []error, substr string) bool {
	for _, err := range errs {
		if strings.Contains(err.Error(), substr) {
			return true
		}
	}
	return false
}
