package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/stretchr/testify/assert"
)

func sampleView() *contract.ScheduleView {
	return &contract.ScheduleView{
		Name:           "downlink",
		Cycle:          domain.Cycle{SlotCount: 2, SlotsPerSecond: 2, TotalCapacityBytes: 201},
		Period:         1,
		PerSlotBytes:   100,
		LeftoverBytes:  1,
		TotalRemaining: 89,
		Slots: []contract.SlotView{
			{
				Index: 0, Name: "M0", Identifier: "0x10", CapacityBytes: 100, BytesRemaining: 92,
				Status: domain.CapacityOK,
				Items:  []contract.ItemView{{Name: "VAR1", Kind: domain.ItemTelemetry, SizeBytes: 8}},
			},
			{
				Index: 1, Name: "M1", CapacityBytes: 100, BytesRemaining: -4,
				Status: domain.CapacityOver,
				SubSlots: []contract.SubSlotView{
					{Position: 1, Name: "M1S1", BytesRemaining: 100, Status: domain.CapacityOK},
					{Position: 2, Name: "M1S2", BytesRemaining: -4, Status: domain.CapacityOver,
						Items: []contract.ItemView{{Name: "APP1", Kind: domain.ItemApplication, SizeBytes: 104}}},
				},
			},
		},
		Unassigned: []contract.ItemView{{Name: "VAR2"}},
	}
}

func TestFormatSchedule(t *testing.T) {
	out := FormatSchedule(sampleView())

	assert.Contains(t, out, "DOWNLINK")
	assert.Contains(t, out, "2 slots at 2 Hz")
	assert.Contains(t, out, "1 B leftover")
	assert.Contains(t, out, "M0")
	assert.Contains(t, out, "0x10")
	assert.Contains(t, out, "VAR1")
	assert.Contains(t, out, "└─ M1S2")
	assert.Contains(t, out, "├─ M1S1")
	assert.Contains(t, out, "● OVER")
	assert.Contains(t, out, "-4")
	assert.Contains(t, out, "VAR2")
}

func TestFormatSchedule_NoLeftoverLine(t *testing.T) {
	v := sampleView()
	v.LeftoverBytes = 0
	v.Unassigned = nil
	out := FormatSchedule(v)
	assert.NotContains(t, out, "leftover")
	assert.NotContains(t, out, "unassigned")
}

func TestFormatStatus(t *testing.T) {
	resp := &contract.StatusResponse{
		View:           *sampleView(),
		Changed:        true,
		Diff:           "M0: VAR1\n",
		OverSubscribed: []int{1},
		Fingerprint:    "beef",
	}
	out := FormatStatus(resp)
	assert.Contains(t, out, "Over-subscribed slots: 1")
	assert.Contains(t, out, "Uncommitted changes")
	assert.Contains(t, out, "M0: VAR1")
	assert.Contains(t, out, "beef")

	resp.Changed = false
	resp.OverSubscribed = nil
	out = FormatStatus(resp)
	assert.Contains(t, out, "No uncommitted changes")
	assert.NotContains(t, out, "Over-subscribed")
}

func TestFormatScheduleList(t *testing.T) {
	assert.Contains(t, FormatScheduleList(nil), "No schedules")

	out := FormatScheduleList([]*domain.ScheduleInfo{{
		Name:      "downlink",
		Cycle:     domain.Cycle{SlotCount: 16, SlotsPerSecond: 16, TotalCapacityBytes: 4096},
		UpdatedAt: time.Now(),
	}})
	assert.Contains(t, out, "downlink")
	assert.Contains(t, out, "16 Hz")
	assert.Contains(t, out, "4,096 B")
	assert.Contains(t, out, "Today")
}
