package scheduler

import (
	"strconv"
	"strings"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/zeebo/xxh3"
)

// Snapshot re-baselines the committed state to the current working slots.
func (s *Schedule) Snapshot() {
	s.committed = domain.CloneSlots(s.slots)
}

// Committed returns a deep copy of the committed snapshot.
func (s *Schedule) Committed() []*domain.Slot {
	return domain.CloneSlots(s.committed)
}

// Restore replaces the committed snapshot with stored, e.g. the last saved
// revision when the working copy was loaded from elsewhere.
func (s *Schedule) Restore(committed []*domain.Slot) {
	s.committed = domain.CloneSlots(committed)
}

// IsChanged reports whether the working slots differ from the committed
// snapshot. The comparison is positional: reordering items counts as a
// change.
func (s *Schedule) IsChanged() bool {
	return !slotsEqual(s.committed, s.slots)
}

// Diff renders the differences between committed and working slots. It is
// empty when nothing changed.
func (s *Schedule) Diff() string {
	if !s.IsChanged() {
		return ""
	}
	return cmp.Diff(s.committed, s.slots)
}

func slotsEqual(a, b []*domain.Slot) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !slotEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func slotEqual(a, b *domain.Slot) bool {
	if a.BytesRemaining != b.BytesRemaining ||
		a.CapacityBytes != b.CapacityBytes ||
		a.Name != b.Name ||
		a.Identifier != b.Identifier ||
		len(a.Items) != len(b.Items) ||
		len(a.SubSlots) != len(b.SubSlots) {
		return false
	}
	if !itemsEqual(a.Items, b.Items) {
		return false
	}
	for j := range a.SubSlots {
		sa, sb := a.SubSlots[j], b.SubSlots[j]
		if sa.BytesRemaining != sb.BytesRemaining ||
			sa.Name != sb.Name ||
			sa.Identifier != sb.Identifier ||
			len(sa.Items) != len(sb.Items) ||
			!itemsEqual(sa.Items, sb.Items) {
			return false
		}
	}
	return true
}

func itemsEqual(a, b []*domain.Item) bool {
	for k := range a {
		if a[k].SizeBytes != b[k].SizeBytes || a[k].Name != b[k].Name || a[k].RateHz != b[k].RateHz {
			return false
		}
	}
	return true
}

// Fingerprint digests a slot list. Two lists with the same fingerprint hold
// the same names, identifiers and placements in the same order.
func Fingerprint(slots []*domain.Slot) uint64 {
	var b strings.Builder
	for _, slot := range slots {
		b.WriteString("S|")
		b.WriteString(slot.Name)
		b.WriteByte('|')
		b.WriteString(slot.Identifier)
		b.WriteByte('\n')
		writeItems(&b, slot.Items)
		for _, sub := range slot.SubSlots {
			b.WriteString("U|")
			b.WriteString(sub.Name)
			b.WriteByte('|')
			b.WriteString(sub.Identifier)
			b.WriteByte('\n')
			writeItems(&b, sub.Items)
		}
	}
	return xxh3.HashString(b.String())
}

func writeItems(b *strings.Builder, items []*domain.Item) {
	for _, it := range items {
		b.WriteString("I|")
		b.WriteString(it.Name)
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(it.SizeBytes))
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(it.RateHz, 'g', -1, 64))
		b.WriteByte('|')
		b.WriteString(it.LinkID)
		for _, m := range it.Slots {
			b.WriteByte('|')
			b.WriteString(strconv.Itoa(m))
		}
		b.WriteByte('\n')
	}
}
