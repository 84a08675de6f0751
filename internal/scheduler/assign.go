package scheduler

import (
	"fmt"
	"slices"

	"github.com/alexanderramin/cadence/internal/domain"
)

// Target addresses an item container. Sub 0 is the slot's own item list;
// Sub >= 1 is a 1-based sub-slot position.
type Target struct {
	Slot int
	Sub  int
}

func (t Target) String() string {
	if t.Sub == 0 {
		return fmt.Sprintf("slot %d", t.Slot)
	}
	return fmt.Sprintf("slot %d sub %d", t.Slot, t.Sub)
}

type Outcome string

const (
	OutcomeApplied           Outcome = "applied"
	OutcomeNeedsConfirmation Outcome = "needs_confirmation"
)

// Result describes a successful (or pending) mutation.
type Result struct {
	Outcome Outcome

	// Placed lists the items added, the requested one first and then
	// any link mates pulled from the pool.
	Placed []string

	// Removed lists the names of items taken out of the schedule.
	Removed []string

	// Evacuated holds sub-slot items returned to the pool by a
	// structural change.
	Evacuated []*domain.Item
}

// Applied reports whether the mutation changed the schedule.
func (r *Result) Applied() bool {
	return r != nil && r.Outcome == OutcomeApplied
}

// AddItem places a copy of item into each target. Pooled items sharing the
// item's link group travel with it. Nothing changes unless every placement
// is accepted.
func (s *Schedule) AddItem(item *domain.Item, targets ...Target) (*Result, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, &domain.ValidationError{Rule: domain.RuleIndexRange, Field: "target", Msg: "is required"}
	}
	group := s.linkGroup(item)
	if err := s.checkGroup(group, targets); err != nil {
		return nil, err
	}

	for _, t := range targets {
		for _, it := range group {
			s.place(it.Clone(), t)
		}
	}
	return s.finishPlacement(group, targets), nil
}

// AssignOption places item into every target of c. Full-rate placements
// record the full slot list so later removal can find each copy. Nothing
// changes unless every target accepts the item and its link group.
func (s *Schedule) AssignOption(item *domain.Item, c Combination) (*Result, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}
	targets := c.Targets()
	if len(targets) == 0 {
		return nil, &domain.ValidationError{Rule: domain.RuleIndexRange, Field: "option", Msg: "selects no slots"}
	}
	group := s.linkGroup(item)
	if err := s.checkGroup(group, targets); err != nil {
		return nil, err
	}

	for _, t := range targets {
		for _, it := range group {
			placed := it.Clone()
			if c.Kind == CombinationSlots {
				placed.Slots = slices.Clone(c.Slots)
			}
			s.place(placed, t)
		}
	}
	return s.finishPlacement(group, targets), nil
}

// linkGroup returns item followed by the pooled items sharing its link.
func (s *Schedule) linkGroup(item *domain.Item) []*domain.Item {
	group := []*domain.Item{item}
	if !item.Linked() {
		return group
	}
	for _, it := range s.pool {
		if it.LinkID == item.LinkID && it.Name != item.Name {
			group = append(group, it)
		}
	}
	return group
}

// checkGroup validates every placement of group before any is made. Two
// targets in one call conflict when they share a slot and either names the
// slot itself or both name the same sub-slot.
func (s *Schedule) checkGroup(group []*domain.Item, targets []Target) error {
	for i, t := range targets {
		for _, prev := range targets[:i] {
			if prev.Slot == t.Slot && (prev.Sub == 0 || t.Sub == 0 || prev.Sub == t.Sub) {
				return &domain.ValidationError{
					Rule:  domain.RuleDuplicateItem,
					Field: t.String(),
					Value: group[0].Name,
					Msg:   fmt.Sprintf("targeted twice in slot %d", t.Slot),
				}
			}
		}
		for _, it := range group {
			if err := s.checkPlacement(it, t); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Schedule) finishPlacement(group []*domain.Item, targets []Target) *Result {
	result := &Result{Outcome: OutcomeApplied}
	for _, it := range group {
		s.takeFromPool(it.Name)
		result.Placed = append(result.Placed, it.Name)
	}
	for _, idx := range uniqueSlots(targets) {
		s.recompute(idx)
	}
	return result
}

// RemoveItems takes the named items out of slot. Link groups leave
// together, and full-rate items leave every slot they were placed in. An
// item still placed at another explicit target stays out of the pool.
func (s *Schedule) RemoveItems(names []string, slot int) (*Result, error) {
	if err := s.checkSlot(slot); err != nil {
		return nil, err
	}
	owner := s.slots[slot]

	found := make([]*domain.Item, 0, len(names))
	for _, name := range names {
		it := findInSlot(owner, name)
		if it == nil {
			return nil, fmt.Errorf("item %q in slot %d: %w", name, slot, domain.ErrNotFound)
		}
		found = append(found, it)
	}

	var removed []*domain.Item
	seen := make(map[string]bool)
	collect := func(it *domain.Item) {
		if !seen[it.Name] {
			seen[it.Name] = true
			removed = append(removed, it)
		}
	}
	for _, it := range found {
		collect(it)
		if !it.Linked() {
			continue
		}
		for _, mate := range linkMates(owner, it.LinkID) {
			collect(mate)
		}
	}

	affected := map[int]bool{slot: true}
	result := &Result{Outcome: OutcomeApplied}
	for _, it := range removed {
		if domain.IndexOfItem(owner.Items, it.Name) >= 0 {
			members := it.Slots
			if len(members) == 0 {
				members = []int{slot}
			}
			for _, m := range members {
				if m < 0 || m >= len(s.slots) {
					continue
				}
				s.slots[m].Items = deleteItem(s.slots[m].Items, it.Name)
				affected[m] = true
			}
		}
		for _, sub := range owner.SubSlots {
			sub.Items = deleteItem(sub.Items, it.Name)
		}
		if !s.isPlaced(it.Name) {
			s.returnToPool(it)
		}
		result.Removed = append(result.Removed, it.Name)
	}

	for idx := range affected {
		s.recompute(idx)
	}
	return result, nil
}

// checkPlacement rejects item at t when the slot already carries it in a
// way that would count its bytes twice: in the same list, in the slot's own
// list when t is a sub-slot, or in any sub-slot when t is the slot itself.
// Sibling sub-slots may share an item; that is how sub-rate strides land.
func (s *Schedule) checkPlacement(item *domain.Item, t Target) error {
	items, err := s.container(t)
	if err != nil {
		return err
	}
	slot := s.slots[t.Slot]
	clash := domain.IndexOfItem(items, item.Name) >= 0
	if !clash && t.Sub > 0 {
		clash = domain.IndexOfItem(slot.Items, item.Name) >= 0
	}
	if !clash && t.Sub == 0 {
		for _, sub := range slot.SubSlots {
			if domain.IndexOfItem(sub.Items, item.Name) >= 0 {
				clash = true
				break
			}
		}
	}
	if clash {
		return &domain.ValidationError{
			Rule:  domain.RuleDuplicateItem,
			Field: t.String(),
			Value: item.Name,
			Msg:   "already present",
		}
	}
	return nil
}

func (s *Schedule) container(t Target) ([]*domain.Item, error) {
	if err := s.checkSlot(t.Slot); err != nil {
		return nil, err
	}
	slot := s.slots[t.Slot]
	if t.Sub == 0 {
		return slot.Items, nil
	}
	if !slot.HasSubSlots() {
		return nil, &domain.ValidationError{
			Rule:  domain.RuleNoSubSlots,
			Field: t.String(),
			Msg:   "slot has only its default sub-slot",
		}
	}
	if t.Sub < 1 || t.Sub > len(slot.SubSlots) {
		return nil, &domain.ValidationError{
			Rule:  domain.RuleIndexRange,
			Field: "sub",
			Value: fmt.Sprint(t.Sub),
			Msg:   fmt.Sprintf("must be in [1, %d]", len(slot.SubSlots)),
		}
	}
	return slot.SubSlots[t.Sub-1].Items, nil
}

func (s *Schedule) place(it *domain.Item, t Target) {
	slot := s.slots[t.Slot]
	if t.Sub == 0 {
		slot.Items = s.insert(slot.Items, it)
		return
	}
	sub := slot.SubSlots[t.Sub-1]
	sub.Items = s.insert(sub.Items, it)
}

func (s *Schedule) insert(items []*domain.Item, it *domain.Item) []*domain.Item {
	if s.order == nil {
		return append(items, it)
	}
	pos := slices.IndexFunc(items, func(existing *domain.Item) bool {
		return s.order(it, existing) < 0
	})
	if pos < 0 {
		return append(items, it)
	}
	return slices.Insert(items, pos, it)
}

func validateItem(item *domain.Item) error {
	if item == nil {
		return &domain.ValidationError{Rule: domain.RuleItem, Field: "item", Msg: "is required"}
	}
	if item.Name == "" {
		return &domain.ValidationError{Rule: domain.RuleNameEmpty, Field: "item.name", Msg: "is required"}
	}
	if item.SizeBytes < 0 {
		return &domain.ValidationError{Rule: domain.RuleItem, Field: "item.size_bytes", Value: fmt.Sprint(item.SizeBytes), Msg: "must not be negative"}
	}
	return nil
}

func findInSlot(slot *domain.Slot, name string) *domain.Item {
	if i := domain.IndexOfItem(slot.Items, name); i >= 0 {
		return slot.Items[i]
	}
	for _, sub := range slot.SubSlots {
		if i := domain.IndexOfItem(sub.Items, name); i >= 0 {
			return sub.Items[i]
		}
	}
	return nil
}

// isPlaced reports whether any slot or sub-slot still carries name.
func (s *Schedule) isPlaced(name string) bool {
	for _, slot := range s.slots {
		if findInSlot(slot, name) != nil {
			return true
		}
	}
	return false
}

func linkMates(slot *domain.Slot, linkID string) []*domain.Item {
	var out []*domain.Item
	for _, it := range slot.Items {
		if it.LinkID == linkID {
			out = append(out, it)
		}
	}
	for _, sub := range slot.SubSlots {
		for _, it := range sub.Items {
			if it.LinkID == linkID {
				out = append(out, it)
			}
		}
	}
	return out
}

func deleteItem(items []*domain.Item, name string) []*domain.Item {
	return slices.DeleteFunc(items, func(it *domain.Item) bool { return it.Name == name })
}

func uniqueSlots(targets []Target) []int {
	var out []int
	for _, t := range targets {
		if !slices.Contains(out, t.Slot) {
			out = append(out, t.Slot)
		}
	}
	return out
}
