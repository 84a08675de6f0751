package domain

// Slot is one repeating message of the cycle. It always owns at least one
// sub-slot; a lone sub-slot is the default one and is not shown on its own.
type Slot struct {
	Name           string
	Identifier     string
	CapacityBytes  int
	BytesRemaining int
	SubSlots       []*SubSlot
	Items          []*Item
}

// SubSlot subdivides a slot for items slower than the cycle. Sub-slots never
// nest.
type SubSlot struct {
	Name           string
	Identifier     string
	BytesRemaining int
	Items          []*Item
}

// NewSlot returns a slot with its default sub-slot.
func NewSlot(name string, capacity int) *Slot {
	return &Slot{
		Name:           name,
		CapacityBytes:  capacity,
		BytesRemaining: capacity,
		SubSlots:       []*SubSlot{{Name: name, BytesRemaining: capacity}},
	}
}

// HasSubSlots reports whether the slot has been subdivided beyond the default.
func (s *Slot) HasSubSlots() bool {
	return len(s.SubSlots) > 1
}

// SubSlotCount returns the number of sub-slots, the default included.
func (s *Slot) SubSlotCount() int {
	return len(s.SubSlots)
}

// SubSlotItemCount counts item placements held by sub-slots.
func (s *Slot) SubSlotItemCount() int {
	n := 0
	if !s.HasSubSlots() {
		return 0
	}
	for _, sub := range s.SubSlots {
		n += len(sub.Items)
	}
	return n
}

// AllocatedBytes is the byte total the slot's budget is currently spent on.
func (s *Slot) AllocatedBytes() int {
	return s.CapacityBytes - s.BytesRemaining
}

// OverSubscribed reports whether the slot or any of its sub-slots exceeds
// capacity.
func (s *Slot) OverSubscribed() bool {
	if s.BytesRemaining < 0 {
		return true
	}
	if s.HasSubSlots() {
		for _, sub := range s.SubSlots {
			if sub.BytesRemaining < 0 {
				return true
			}
		}
	}
	return false
}

// Status classifies the slot's remaining capacity.
func (s *Slot) Status() CapacityStatus {
	return capacityStatus(s.BytesRemaining, s.OverSubscribed())
}

// Status classifies the sub-slot's remaining capacity.
func (s *SubSlot) Status() CapacityStatus {
	return capacityStatus(s.BytesRemaining, s.BytesRemaining < 0)
}

func capacityStatus(remaining int, over bool) CapacityStatus {
	switch {
	case over:
		return CapacityOver
	case remaining == 0:
		return CapacityFull
	default:
		return CapacityOK
	}
}

// EffectiveIdentifier returns the identifier a sub-slot is addressed by. The
// default sub-slot carries its parent's identifier.
func (s *Slot) EffectiveIdentifier(sub int) string {
	if !s.HasSubSlots() || sub < 0 || sub >= len(s.SubSlots) {
		return s.Identifier
	}
	return s.SubSlots[sub].Identifier
}

// AllItems returns what the sub-slot actually carries: the parent's direct
// items followed by its own.
func (s *SubSlot) AllItems(parent *Slot) []*Item {
	out := make([]*Item, 0, len(parent.Items)+len(s.Items))
	out = append(out, parent.Items...)
	return append(out, s.Items...)
}

// Clone returns a deep copy of the sub-slot.
func (s *SubSlot) Clone() *SubSlot {
	c := *s
	c.Items = CloneItems(s.Items)
	return &c
}

// Clone returns a deep copy of the slot, sub-slots and items included.
func (s *Slot) Clone() *Slot {
	c := *s
	c.Items = CloneItems(s.Items)
	c.SubSlots = make([]*SubSlot, len(s.SubSlots))
	for i, sub := range s.SubSlots {
		c.SubSlots[i] = sub.Clone()
	}
	return &c
}

// CloneSlots deep copies a slot list.
func CloneSlots(slots []*Slot) []*Slot {
	out := make([]*Slot, len(slots))
	for i, s := range slots {
		out[i] = s.Clone()
	}
	return out
}
