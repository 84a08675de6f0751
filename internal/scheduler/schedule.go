package scheduler

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/alexanderramin/cadence/internal/domain"
)

// Schedule is the working set of slots for one cycle together with the last
// committed snapshot. It is not safe for concurrent mutation; callers
// serialise writes.
type Schedule struct {
	cycle     domain.Cycle
	slots     []*domain.Slot
	committed []*domain.Slot
	pool      []*domain.Item

	sizer     PackedSizer
	order     func(a, b *domain.Item) int
	validator *Validator
}

// ScheduleOption configures a Schedule during construction.
type ScheduleOption func(*Schedule)

// WithPackedSizer replaces the default bit packer.
func WithPackedSizer(p PackedSizer) ScheduleOption {
	return func(s *Schedule) {
		if p != nil {
			s.sizer = p
		}
	}
}

// WithOrdering sets the relative ordering used when inserting items. cmp
// follows the slices.SortFunc convention. Without it items are appended.
func WithOrdering(cmp func(a, b *domain.Item) int) ScheduleOption {
	return func(s *Schedule) {
		s.order = cmp
	}
}

// WithNamePattern sets the character class slot and sub-slot names must match.
func WithNamePattern(re *regexp.Regexp) ScheduleOption {
	return func(s *Schedule) {
		if re != nil {
			s.validator = NewValidator(re)
		}
	}
}

// New builds a schedule from previously stored slots, or fresh default slots
// when stored is empty, and baselines the committed snapshot.
func New(cycle domain.Cycle, stored []*domain.Slot, unassigned []*domain.Item, opts ...ScheduleOption) (*Schedule, error) {
	if err := cycle.Validate(); err != nil {
		return nil, err
	}
	s := &Schedule{
		cycle:     cycle,
		sizer:     BitPacker{},
		validator: NewValidator(DefaultNamePattern),
		pool:      domain.CloneItems(unassigned),
	}
	for _, opt := range opts {
		opt(s)
	}

	per := cycle.PerSlotCapacity()
	if len(stored) == 0 {
		s.slots = make([]*domain.Slot, cycle.SlotCount)
		for i := range s.slots {
			s.slots[i] = domain.NewSlot(DefaultSlotName(i), per)
		}
	} else {
		if len(stored) != cycle.SlotCount {
			return nil, &domain.ValidationError{
				Rule:  domain.RuleIndexRange,
				Field: "slots",
				Value: fmt.Sprint(len(stored)),
				Msg:   fmt.Sprintf("stored slot count does not match cycle slot count %d", cycle.SlotCount),
			}
		}
		s.slots = domain.CloneSlots(stored)
		for _, slot := range s.slots {
			if len(slot.SubSlots) == 0 {
				slot.SubSlots = []*domain.SubSlot{{Name: slot.Name}}
			}
		}
		if err := s.validator.CheckSlots(s.slots); err != nil {
			return nil, err
		}
	}

	s.RecomputeRemaining()
	s.Snapshot()
	return s, nil
}

// DefaultSlotName is the name given to slot i of a fresh schedule.
func DefaultSlotName(i int) string {
	return fmt.Sprintf("M%d", i)
}

// Cycle returns the schedule's cycle parameters.
func (s *Schedule) Cycle() domain.Cycle {
	return s.cycle
}

// ListSlots returns a deep copy of the working slots.
func (s *Schedule) ListSlots() []*domain.Slot {
	return domain.CloneSlots(s.slots)
}

// Slot returns a deep copy of slot i.
func (s *Schedule) Slot(i int) (*domain.Slot, error) {
	if err := s.checkSlot(i); err != nil {
		return nil, err
	}
	return s.slots[i].Clone(), nil
}

// Remaining returns the signed remaining bytes of slot i.
func (s *Schedule) Remaining(i int) (int, error) {
	if err := s.checkSlot(i); err != nil {
		return 0, err
	}
	return s.slots[i].BytesRemaining, nil
}

// Unassigned returns the pool of items not placed anywhere.
func (s *Schedule) Unassigned() []*domain.Item {
	return domain.CloneItems(s.pool)
}

// PoolItem returns the unassigned item named name.
func (s *Schedule) PoolItem(name string) (*domain.Item, error) {
	i := domain.IndexOfItem(s.pool, name)
	if i < 0 {
		return nil, fmt.Errorf("unassigned item %q: %w", name, domain.ErrNotFound)
	}
	return s.pool[i].Clone(), nil
}

// OverSubscribed returns the indexes of slots over capacity.
func (s *Schedule) OverSubscribed() []int {
	var out []int
	for i, slot := range s.slots {
		if slot.OverSubscribed() {
			out = append(out, i)
		}
	}
	return out
}

func (s *Schedule) checkSlot(i int) error {
	if i < 0 || i >= len(s.slots) {
		return &domain.ValidationError{
			Rule:  domain.RuleIndexRange,
			Field: "slot",
			Value: fmt.Sprint(i),
			Msg:   fmt.Sprintf("must be in [0, %d)", len(s.slots)),
		}
	}
	return nil
}

func (s *Schedule) takeFromPool(name string) {
	if i := domain.IndexOfItem(s.pool, name); i >= 0 {
		s.pool = slices.Delete(s.pool, i, i+1)
	}
}

func (s *Schedule) returnToPool(it *domain.Item) {
	if domain.IndexOfItem(s.pool, it.Name) >= 0 {
		return
	}
	c := it.Clone()
	c.Slots = nil
	s.pool = append(s.pool, c)
}
