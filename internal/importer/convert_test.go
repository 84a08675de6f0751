package importer

import (
	"testing"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/scheduler"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_ItemsAndCycle(t *testing.T) {
	schema := validMinimalSchema()
	schema.Items = append(schema.Items,
		ItemImport{Name: "APP1", Kind: "application", SizeBytes: 16, AppID: ptrInt(300), RateHz: 1},
		ItemImport{Name: "FLAG", Kind: "telemetry", BitLength: 11, RateHz: 2},
	)

	gen := Convert(schema)
	require.NotNil(t, gen.Info)
	assert.NotEmpty(t, gen.Info.ID)
	assert.Equal(t, "downlink", gen.Info.Name)
	assert.Equal(t, domain.Cycle{SlotCount: 4, SlotsPerSecond: 4, TotalCapacityBytes: 400}, gen.Info.Cycle)

	require.Len(t, gen.Items, 3)
	app := gen.Items[1]
	assert.Equal(t, domain.ItemApplication, app.Kind)
	require.NotNil(t, app.Application)
	assert.Equal(t, uint16(300), app.Application.AppID)

	flag := gen.Items[2]
	require.NotNil(t, flag.Telemetry)
	assert.Equal(t, 11, flag.Telemetry.BitLength)
	assert.Equal(t, 2, flag.SizeBytes, "size is derived from the bit length when omitted")
	assert.NotEqual(t, gen.Items[0].ID, flag.ID)
}

func TestConvert_LayoutSortedAndTargetsMapped(t *testing.T) {
	schema := validMinimalSchema()
	schema.Slots = []SlotImport{{Index: 3, Name: "D"}, {Index: 1, Name: "B"}}
	schema.Assignments = []AssignmentImport{
		{Item: "VAR1", Targets: []TargetImport{{Slot: 1}, {Slot: 3, Sub: 2}}},
	}

	gen := Convert(schema)
	require.Len(t, gen.Layout, 2)
	assert.Equal(t, 1, gen.Layout[0].Index)
	assert.Equal(t, 3, gen.Layout[1].Index)

	require.Len(t, gen.Assignments, 1)
	assert.Nil(t, gen.Assignments[0].Option)
	assert.Equal(t, []scheduler.Target{{Slot: 1}, {Slot: 3, Sub: 2}}, gen.Assignments[0].Targets)
}

func TestLoadImportSchema(t *testing.T) {
	fs := afero.NewMemMapFs()
	body := `{
		"schedule": {"name": "downlink", "slot_count": 4, "slots_per_second": 4, "total_capacity_bytes": 400},
		"items": [{"name": "VAR1", "kind": "telemetry", "size_bytes": 8, "rate_hz": 4}],
		"assignments": [{"item": "VAR1", "option": 0}]
	}`
	require.NoError(t, afero.WriteFile(fs, "/imports/downlink.json", []byte(body), 0o644))

	schema, err := LoadImportSchema(fs, "/imports/downlink.json")
	require.NoError(t, err)
	assert.Equal(t, "downlink", schema.Schedule.Name)
	require.Len(t, schema.Assignments, 1)
	require.NotNil(t, schema.Assignments[0].Option)
	assert.Equal(t, 0, *schema.Assignments[0].Option)
	assert.Empty(t, ValidateImportSchema(schema))
}

func TestLoadImportSchema_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := LoadImportSchema(fs, "/missing.json")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte("{not json"), 0o644))
	_, err = LoadImportSchema(fs, "/bad.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing import file")
}
