package scheduler

import (
	"strings"
	"testing"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem_UpdatesRemaining(t *testing.T) {
	s := newSchedule(t, 4, 1, 400)

	res, err := s.AddItem(item("EPS.BUS.V", 12, 0.25), Target{Slot: 2})
	require.NoError(t, err)
	assert.True(t, res.Applied())

	rem, err := s.Remaining(2)
	require.NoError(t, err)
	assert.Equal(t, 88, rem)
	assert.True(t, s.IsChanged())
}

func TestAddItem_DuplicateName(t *testing.T) {
	s := newSchedule(t, 4, 1, 400)
	_, err := s.AddItem(item("A", 10, 1), Target{Slot: 0})
	require.NoError(t, err)
	s.Snapshot()
	before := s.ListSlots()

	_, err = s.AddItem(item("A", 99, 1), Target{Slot: 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	rule, _ := domain.RuleOf(err)
	assert.Equal(t, domain.RuleDuplicateItem, rule)
	assert.Contains(t, err.Error(), "already present")

	assert.Equal(t, before, s.ListSlots(), "state unchanged")
	assert.False(t, s.IsChanged(), "change flag unaffected")
}

func TestAddItem_TargetValidation(t *testing.T) {
	s := newSchedule(t, 2, 1, 200)
	subdivide(t, s, 1, 2)

	cases := []struct {
		name   string
		target Target
		rule   domain.ValidationRule
	}{
		{"slot too high", Target{Slot: 2}, domain.RuleIndexRange},
		{"slot negative", Target{Slot: -1}, domain.RuleIndexRange},
		{"default sub-slot only", Target{Slot: 0, Sub: 1}, domain.RuleNoSubSlots},
		{"sub too high", Target{Slot: 1, Sub: 3}, domain.RuleIndexRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.AddItem(item("A", 1, 1), tc.target)
			rule, ok := domain.RuleOf(err)
			require.True(t, ok)
			assert.Equal(t, tc.rule, rule)
		})
	}
}

func TestAddItem_InvalidItem(t *testing.T) {
	s := newSchedule(t, 2, 1, 200)
	_, err := s.AddItem(item("", 1, 1), Target{})
	rule, _ := domain.RuleOf(err)
	assert.Equal(t, domain.RuleNameEmpty, rule)

	_, err = s.AddItem(item("A", -1, 1), Target{})
	rule, _ = domain.RuleOf(err)
	assert.Equal(t, domain.RuleItem, rule)
}

func TestAddItem_Ordering(t *testing.T) {
	byName := func(a, b *domain.Item) int { return strings.Compare(a.Name, b.Name) }
	s := newSchedule(t, 1, 1, 100, WithOrdering(byName))

	for _, n := range []string{"C", "A", "B"} {
		_, err := s.AddItem(item(n, 1, 1), Target{})
		require.NoError(t, err)
	}
	slot, _ := s.Slot(0)
	assert.Equal(t, []string{"A", "B", "C"}, itemNames(slot.Items))
}

func TestAddItem_TakesFromPool(t *testing.T) {
	pool := []*domain.Item{item("A", 1, 1), item("B", 1, 1)}
	s, err := New(domain.Cycle{SlotCount: 1, SlotsPerSecond: 1, TotalCapacityBytes: 10}, nil, pool)
	require.NoError(t, err)

	a, err := s.PoolItem("A")
	require.NoError(t, err)
	_, err = s.AddItem(a, Target{})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, itemNames(s.Unassigned()))

	_, err = s.PoolItem("A")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddItem_OverSubscriptionIsSurfaced(t *testing.T) {
	s := newSchedule(t, 2, 1, 20)
	_, err := s.AddItem(item("Big", 15, 1), Target{Slot: 1})
	require.NoError(t, err, "over-subscription is tolerated")

	rem, _ := s.Remaining(1)
	assert.Equal(t, -5, rem)
	assert.Equal(t, []int{1}, s.OverSubscribed())
	slot, _ := s.Slot(1)
	assert.Equal(t, domain.CapacityOver, slot.Status())
}

func TestAddRemove_RoundTrip(t *testing.T) {
	s := newSchedule(t, 4, 1, 400)
	_, err := s.AddItem(item("Keep", 3, 1), Target{Slot: 1})
	require.NoError(t, err)
	before, _ := s.Slot(1)

	_, err = s.AddItem(item("X", 9, 1), Target{Slot: 1})
	require.NoError(t, err)
	res, err := s.RemoveItems([]string{"X"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, res.Removed)

	after, _ := s.Slot(1)
	assert.Equal(t, before.BytesRemaining, after.BytesRemaining)
	assert.Equal(t, itemNames(before.Items), itemNames(after.Items))
	assert.Equal(t, []string{"X"}, itemNames(s.Unassigned()))
}

func TestRemoveItems_LinkGroup(t *testing.T) {
	s := newSchedule(t, 2, 1, 200)
	_, err := s.AddItem(linked("item1", 10, 1, "L1"), Target{Slot: 0})
	require.NoError(t, err)
	_, err = s.AddItem(linked("item2", 20, 1, "L1"), Target{Slot: 0})
	require.NoError(t, err)
	_, err = s.AddItem(item("other", 5, 1), Target{Slot: 0})
	require.NoError(t, err)

	res, err := s.RemoveItems([]string{"item1"}, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"item1", "item2"}, res.Removed)

	slot, _ := s.Slot(0)
	assert.Equal(t, []string{"other"}, itemNames(slot.Items))
	assert.Equal(t, 95, slot.BytesRemaining, "both linked items freed")
}

func TestRemoveItems_NotFoundLeavesStateUnchanged(t *testing.T) {
	s := newSchedule(t, 2, 1, 200)
	_, err := s.AddItem(item("A", 10, 1), Target{Slot: 0})
	require.NoError(t, err)
	s.Snapshot()

	_, err = s.RemoveItems([]string{"A", "missing"}, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, s.IsChanged())

	_, err = s.RemoveItems([]string{"A"}, 5)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAssignOption_FullRateMembership(t *testing.T) {
	s := newSchedule(t, 4, 1, 400)
	opts, err := s.EnumerateOptions(0.5)
	require.NoError(t, err)

	_, err = s.AssignOption(item("ATT.Q", 16, 0.5), opts[1])
	require.NoError(t, err)

	for _, idx := range []int{1, 3} {
		slot, _ := s.Slot(idx)
		require.Len(t, slot.Items, 1)
		assert.Equal(t, []int{1, 3}, slot.Items[0].Slots)
		assert.Equal(t, 84, slot.BytesRemaining)
	}

	// Removing from one slot clears every member slot.
	res, err := s.RemoveItems([]string{"ATT.Q"}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"ATT.Q"}, res.Removed)
	for _, idx := range []int{1, 3} {
		slot, _ := s.Slot(idx)
		assert.Empty(t, slot.Items)
		assert.Equal(t, 100, slot.BytesRemaining)
	}
	pooled := s.Unassigned()
	require.Len(t, pooled, 1)
	assert.Empty(t, pooled[0].Slots, "pooled items carry no membership")
}

func TestAssignOption_AtomicOnConflict(t *testing.T) {
	s := newSchedule(t, 4, 1, 400)
	_, err := s.AddItem(item("Q", 4, 0.5), Target{Slot: 2})
	require.NoError(t, err)
	s.Snapshot()

	opts, err := s.EnumerateOptions(0.5)
	require.NoError(t, err)
	_, err = s.AssignOption(item("Q", 4, 0.5), opts[0]) // slots 0 and 2
	rule, _ := domain.RuleOf(err)
	assert.Equal(t, domain.RuleDuplicateItem, rule)

	slot0, _ := s.Slot(0)
	assert.Empty(t, slot0.Items, "no partial placement")
	assert.False(t, s.IsChanged())
}

func TestAssignOption_SubSlots(t *testing.T) {
	s := newSchedule(t, 1, 1, 100)
	subdivide(t, s, 0, 4)
	_, err := s.AddItem(item("Direct", 10, 1), Target{Slot: 0})
	require.NoError(t, err)

	opts, err := s.EnumerateOptions(0.5)
	require.NoError(t, err)
	_, err = s.AssignOption(item("Slow", 30, 0.5), opts[0])
	require.NoError(t, err)

	slot, _ := s.Slot(0)
	assert.Equal(t, 90, slot.BytesRemaining, "sub-slot items do not count against the slot itself")
	assert.Equal(t, 60, slot.SubSlots[0].BytesRemaining)
	assert.Equal(t, 90, slot.SubSlots[1].BytesRemaining)
	assert.Equal(t, 60, slot.SubSlots[2].BytesRemaining)
	assert.Equal(t, 90, slot.SubSlots[3].BytesRemaining)

	res, err := s.RemoveItems([]string{"Slow"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Slow"}, res.Removed)
	slot, _ = s.Slot(0)
	assert.Equal(t, []string{"Direct"}, itemNames(slot.Items), "direct items stay")
	for _, sub := range slot.SubSlots {
		assert.Empty(t, sub.Items)
		assert.Equal(t, 90, sub.BytesRemaining)
	}
}

func TestAddItem_DuplicateAcrossSlotAndSubSlot(t *testing.T) {
	s := newSchedule(t, 1, 1, 100)
	subdivide(t, s, 0, 2)
	_, err := s.AddItem(item("X", 10, 1), Target{Slot: 0})
	require.NoError(t, err)

	_, err = s.AddItem(item("X", 10, 1), Target{Slot: 0, Sub: 1})
	rule, ok := domain.RuleOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.RuleDuplicateItem, rule)

	slot, _ := s.Slot(0)
	assert.Empty(t, slot.SubSlots[0].Items)
	assert.Equal(t, 90, slot.SubSlots[0].BytesRemaining, "X counted once")

	// The reverse direction: already in a sub-slot, then the slot itself.
	_, err = s.AddItem(item("Y", 5, 0.5), Target{Slot: 0, Sub: 2})
	require.NoError(t, err)
	_, err = s.AddItem(item("Y", 5, 0.5), Target{Slot: 0})
	rule, _ = domain.RuleOf(err)
	assert.Equal(t, domain.RuleDuplicateItem, rule)
}

func TestAddItem_SameSlotTargetedTwice(t *testing.T) {
	s := newSchedule(t, 2, 1, 200)
	subdivide(t, s, 0, 2)

	_, err := s.AddItem(item("X", 1, 1), Target{Slot: 0}, Target{Slot: 0, Sub: 1})
	rule, _ := domain.RuleOf(err)
	assert.Equal(t, domain.RuleDuplicateItem, rule)

	slot, _ := s.Slot(0)
	assert.Empty(t, slot.Items, "no partial placement")

	res, err := s.AddItem(item("Y", 1, 1), Target{Slot: 0, Sub: 1}, Target{Slot: 0, Sub: 2}, Target{Slot: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Y"}, res.Placed)
}

func TestAddItem_PullsLinkMatesFromPool(t *testing.T) {
	pool := []*domain.Item{
		linked("FLAG1", 2, 1, "L1"),
		linked("FLAG2", 3, 1, "L1"),
		item("Other", 1, 1),
	}
	s, err := New(domain.Cycle{SlotCount: 2, SlotsPerSecond: 1, TotalCapacityBytes: 200}, nil, pool)
	require.NoError(t, err)

	flag1, err := s.PoolItem("FLAG1")
	require.NoError(t, err)
	res, err := s.AddItem(flag1, Target{Slot: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"FLAG1", "FLAG2"}, res.Placed)

	slot, _ := s.Slot(1)
	assert.ElementsMatch(t, []string{"FLAG1", "FLAG2"}, itemNames(slot.Items))
	assert.Equal(t, 95, slot.BytesRemaining)
	assert.Equal(t, []string{"Other"}, itemNames(s.Unassigned()))

	res, err = s.RemoveItems([]string{"FLAG2"}, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"FLAG1", "FLAG2"}, res.Removed)
	assert.ElementsMatch(t, []string{"Other", "FLAG1", "FLAG2"}, itemNames(s.Unassigned()))
}

func TestAssignOption_PullsLinkMatesFromPool(t *testing.T) {
	pool := []*domain.Item{linked("A", 4, 0.5, "grp"), linked("B", 6, 0.5, "grp")}
	s, err := New(domain.Cycle{SlotCount: 4, SlotsPerSecond: 1, TotalCapacityBytes: 400}, nil, pool)
	require.NoError(t, err)

	opts, err := s.EnumerateOptions(0.5)
	require.NoError(t, err)
	a, _ := s.PoolItem("A")
	res, err := s.AssignOption(a, opts[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, res.Placed)

	for _, idx := range []int{0, 2} {
		slot, _ := s.Slot(idx)
		require.Len(t, slot.Items, 2)
		for _, it := range slot.Items {
			assert.Equal(t, []int{0, 2}, it.Slots)
		}
		assert.Equal(t, 90, slot.BytesRemaining)
	}
	assert.Empty(t, s.Unassigned())
}

func TestRemoveItems_StaysOutOfPoolWhilePlacedElsewhere(t *testing.T) {
	pool := []*domain.Item{item("X", 5, 1)}
	s, err := New(domain.Cycle{SlotCount: 3, SlotsPerSecond: 1, TotalCapacityBytes: 300}, nil, pool)
	require.NoError(t, err)

	x, _ := s.PoolItem("X")
	_, err = s.AddItem(x, Target{Slot: 0}, Target{Slot: 2})
	require.NoError(t, err)

	_, err = s.RemoveItems([]string{"X"}, 0)
	require.NoError(t, err)
	assert.Empty(t, s.Unassigned(), "X is still in slot 2")
	slot2, _ := s.Slot(2)
	assert.Equal(t, []string{"X"}, itemNames(slot2.Items))

	_, err = s.RemoveItems([]string{"X"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, itemNames(s.Unassigned()))
}
