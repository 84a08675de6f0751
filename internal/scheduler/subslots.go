package scheduler

import (
	"fmt"
	"slices"

	"github.com/alexanderramin/cadence/internal/domain"
)

type PromptKind string

const (
	PromptAddSubSlot    PromptKind = "add_sub_slot"
	PromptDeleteSubSlot PromptKind = "delete_sub_slot"
)

// Prompt describes a destructive change awaiting confirmation.
type Prompt struct {
	Kind     PromptKind
	Slot     int
	SlotName string

	// Items is the number of distinct items that would be evacuated.
	Items int
}

func (p Prompt) String() string {
	verb := "Add a sub-slot to"
	if p.Kind == PromptDeleteSubSlot {
		verb = "Delete a sub-slot from"
	}
	return fmt.Sprintf("%s %s? %d sub-slot item(s) will be returned to the pool.", verb, p.SlotName, p.Items)
}

// Confirmer answers a Prompt. It is called synchronously and must not
// mutate the schedule.
type Confirmer func(p Prompt) bool

// AddSubSlot appends a sub-slot to slot. Existing sub-slot placements no
// longer line up afterwards, so they are evacuated once confirm approves.
// A nil confirm yields OutcomeNeedsConfirmation without changes.
func (s *Schedule) AddSubSlot(slot int, confirm Confirmer) (*Result, error) {
	return s.restructure(slot, PromptAddSubSlot, confirm, func(owner *domain.Slot) {
		owner.SubSlots = append(owner.SubSlots, &domain.SubSlot{Name: s.nextSubSlotName(owner)})
	})
}

// DeleteSubSlot removes the last sub-slot of slot. The default sub-slot is
// never removed.
func (s *Schedule) DeleteSubSlot(slot int, confirm Confirmer) (*Result, error) {
	if err := s.checkSlot(slot); err != nil {
		return nil, err
	}
	if !s.slots[slot].HasSubSlots() {
		return nil, &domain.ValidationError{
			Rule:  domain.RuleMinimumSubSlots,
			Field: "slot",
			Value: s.slots[slot].Name,
			Msg:   "only the default sub-slot remains",
		}
	}
	return s.restructure(slot, PromptDeleteSubSlot, confirm, func(owner *domain.Slot) {
		owner.SubSlots = owner.SubSlots[:len(owner.SubSlots)-1]
		if !owner.HasSubSlots() {
			owner.SubSlots[0].Identifier = ""
		}
	})
}

func (s *Schedule) restructure(slot int, kind PromptKind, confirm Confirmer, apply func(*domain.Slot)) (*Result, error) {
	if err := s.checkSlot(slot); err != nil {
		return nil, err
	}
	owner := s.slots[slot]
	held := subSlotItems(owner)

	if len(held) > 0 {
		if confirm == nil {
			return &Result{Outcome: OutcomeNeedsConfirmation}, nil
		}
		p := Prompt{Kind: kind, Slot: slot, SlotName: owner.Name, Items: len(held)}
		if !confirm(p) {
			return nil, fmt.Errorf("%s on %s: %w", kind, owner.Name, domain.ErrConfirmationDeclined)
		}
	}

	for _, sub := range owner.SubSlots {
		sub.Items = nil
	}
	result := &Result{Outcome: OutcomeApplied}
	for _, it := range held {
		if !s.isPlaced(it.Name) {
			s.returnToPool(it)
		}
		result.Evacuated = append(result.Evacuated, it.Clone())
		result.Removed = append(result.Removed, it.Name)
	}
	apply(owner)
	s.recompute(slot)
	return result, nil
}

// subSlotItems returns the distinct items placed in slot's sub-slots.
func subSlotItems(slot *domain.Slot) []*domain.Item {
	if !slot.HasSubSlots() {
		return nil
	}
	var out []*domain.Item
	for _, sub := range slot.SubSlots {
		for _, it := range sub.Items {
			if !slices.ContainsFunc(out, func(o *domain.Item) bool { return o.Name == it.Name }) {
				out = append(out, it)
			}
		}
	}
	return out
}

func (s *Schedule) nextSubSlotName(owner *domain.Slot) string {
	for n := len(owner.SubSlots) + 1; ; n++ {
		name := fmt.Sprintf("%sS%d", owner.Name, n)
		if !slices.ContainsFunc(owner.SubSlots, func(sub *domain.SubSlot) bool { return sub.Name == name }) {
			return name
		}
	}
}
