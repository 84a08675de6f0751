package domain

import "fmt"

// Cycle describes the repeating frame every slot belongs to. It is fixed once
// a schedule is created; only TotalCapacityBytes may change afterwards.
type Cycle struct {
	SlotCount          int
	SlotsPerSecond     float64
	TotalCapacityBytes int
}

// Period is the time in seconds after which the whole schedule repeats.
func (c Cycle) Period() float64 {
	if c.SlotsPerSecond <= 0 {
		return 0
	}
	return float64(c.SlotCount) / c.SlotsPerSecond
}

// PerSlotCapacity is the byte budget of a single slot.
func (c Cycle) PerSlotCapacity() int {
	if c.SlotCount <= 0 {
		return 0
	}
	return c.TotalCapacityBytes / c.SlotCount
}

// LeftoverBytes are the bytes that do not divide evenly across slots. They
// count towards the cycle total but belong to no slot.
func (c Cycle) LeftoverBytes() int {
	if c.SlotCount <= 0 {
		return c.TotalCapacityBytes
	}
	return c.TotalCapacityBytes % c.SlotCount
}

// Validate checks the cycle parameters.
func (c Cycle) Validate() error {
	if c.SlotCount <= 0 {
		return &ValidationError{Rule: RuleCycle, Field: "slot_count", Value: fmt.Sprint(c.SlotCount), Msg: "must be positive"}
	}
	if c.SlotsPerSecond <= 0 {
		return &ValidationError{Rule: RuleCycle, Field: "slots_per_second", Value: fmt.Sprint(c.SlotsPerSecond), Msg: "must be positive"}
	}
	if c.TotalCapacityBytes < 0 {
		return &ValidationError{Rule: RuleCycle, Field: "total_capacity_bytes", Value: fmt.Sprint(c.TotalCapacityBytes), Msg: "must not be negative"}
	}
	return nil
}
