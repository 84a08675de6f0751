package importer

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// ImportSchema is the top-level JSON structure for schedule import.
type ImportSchema struct {
	Schedule    ScheduleImport     `json:"schedule"`
	Items       []ItemImport       `json:"items"`
	Slots       []SlotImport       `json:"slots,omitempty"`
	Assignments []AssignmentImport `json:"assignments,omitempty"`
}

// ScheduleImport defines the cycle of the imported schedule.
type ScheduleImport struct {
	Name               string  `json:"name"`
	SlotCount          int     `json:"slot_count"`
	SlotsPerSecond     float64 `json:"slots_per_second"`
	TotalCapacityBytes int     `json:"total_capacity_bytes"`
}

// ItemImport defines one item definition.
type ItemImport struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	SizeBytes int     `json:"size_bytes"`
	BitLength int     `json:"bit_length,omitempty"`
	AppID     *int    `json:"app_id,omitempty"`
	RateHz    float64 `json:"rate_hz"`
	LinkID    string  `json:"link_id,omitempty"`
}

// SlotImport overrides the layout of one slot. SubSlots, when present,
// lists every sub-slot including the default at position 1.
type SlotImport struct {
	Index      int             `json:"index"`
	Name       string          `json:"name,omitempty"`
	Identifier string          `json:"identifier,omitempty"`
	SubSlots   []SubSlotImport `json:"sub_slots,omitempty"`
}

// SubSlotImport names a sub-slot. Empty fields keep generated values.
type SubSlotImport struct {
	Name       string `json:"name,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

// AssignmentImport places an item either by option index for its rate or
// at explicit targets.
type AssignmentImport struct {
	Item    string         `json:"item"`
	Option  *int           `json:"option,omitempty"`
	Targets []TargetImport `json:"targets,omitempty"`
}

// TargetImport addresses a slot (sub 0) or a 1-based sub-slot position.
type TargetImport struct {
	Slot int `json:"slot"`
	Sub  int `json:"sub,omitempty"`
}

// LoadImportSchema reads and parses a schedule import JSON file.
func LoadImportSchema(fs afero.Fs, path string) (*ImportSchema, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	var schema ImportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
