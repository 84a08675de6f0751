package scheduler

import (
	"fmt"

	"github.com/alexanderramin/cadence/internal/domain"
)

// RecomputeRemaining refreshes the remaining bytes of every slot and
// sub-slot. Negative results are kept.
func (s *Schedule) RecomputeRemaining() {
	for i := range s.slots {
		s.recompute(i)
	}
}

func (s *Schedule) recompute(i int) {
	slot := s.slots[i]
	per := s.cycle.PerSlotCapacity()
	slot.CapacityBytes = per
	slot.BytesRemaining = per - s.sizer.PackedSize(slot.Items)
	if !slot.HasSubSlots() {
		slot.SubSlots[0].BytesRemaining = slot.BytesRemaining
		return
	}
	for _, sub := range slot.SubSlots {
		sub.BytesRemaining = per - s.sizer.PackedSize(sub.AllItems(slot))
	}
}

// ChangeCapacity resizes the cycle and shifts every slot's remaining bytes by
// the per-slot difference.
func (s *Schedule) ChangeCapacity(totalBytes int) error {
	if totalBytes < 0 {
		return &domain.ValidationError{
			Rule:  domain.RuleCapacity,
			Field: "total_capacity_bytes",
			Value: fmt.Sprint(totalBytes),
			Msg:   "must not be negative",
		}
	}
	oldPer := s.cycle.PerSlotCapacity()
	s.cycle.TotalCapacityBytes = totalBytes
	newPer := s.cycle.PerSlotCapacity()
	delta := newPer - oldPer

	for _, slot := range s.slots {
		slot.CapacityBytes = newPer
		slot.BytesRemaining += delta
		for _, sub := range slot.SubSlots {
			sub.BytesRemaining += delta
		}
	}
	s.RecomputeRemaining()
	return nil
}

// TotalRemaining sums the signed remaining bytes of all slots plus the
// cycle-level leftover.
func (s *Schedule) TotalRemaining() int {
	total := s.cycle.LeftoverBytes()
	for _, slot := range s.slots {
		total += slot.BytesRemaining
	}
	return total
}

// AllocatedBytes sums the packed size of every slot's direct items.
func (s *Schedule) AllocatedBytes() int {
	total := 0
	for _, slot := range s.slots {
		total += s.sizer.PackedSize(slot.Items)
	}
	return total
}

// PackedSize exposes the configured packer.
func (s *Schedule) PackedSize(items []*domain.Item) int {
	return s.sizer.PackedSize(items)
}
