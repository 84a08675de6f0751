package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsChanged_FalseAfterSnapshot(t *testing.T) {
	s := newSchedule(t, 4, 1, 400)
	_, err := s.AddItem(item("A", 4, 1), Target{Slot: 0})
	require.NoError(t, err)
	require.True(t, s.IsChanged())

	s.Snapshot()
	assert.False(t, s.IsChanged())
	assert.False(t, s.IsChanged(), "repeated calls agree")
	assert.Empty(t, s.Diff())
}

func TestIsChanged_Detects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(t *testing.T, s *Schedule)
	}{
		{"rename", func(t *testing.T, s *Schedule) { require.NoError(t, s.RenameSlot(Target{Slot: 1}, "HK")) }},
		{"identifier", func(t *testing.T, s *Schedule) { require.NoError(t, s.SetIdentifier(Target{Slot: 1}, "7F")) }},
		{"capacity", func(t *testing.T, s *Schedule) { require.NoError(t, s.ChangeCapacity(800)) }},
		{"sub-slot", func(t *testing.T, s *Schedule) {
			_, err := s.AddSubSlot(3, nil)
			require.NoError(t, err)
		}},
		{"item", func(t *testing.T, s *Schedule) {
			_, err := s.AddItem(item("B", 1, 1), Target{Slot: 2})
			require.NoError(t, err)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newSchedule(t, 4, 1, 400)
			tc.mutate(t, s)
			assert.True(t, s.IsChanged())
			assert.NotEmpty(t, s.Diff())
		})
	}
}

func TestIsChanged_ReorderIsAChange(t *testing.T) {
	s := newSchedule(t, 1, 1, 100)
	for _, n := range []string{"A", "B"} {
		_, err := s.AddItem(item(n, 1, 1), Target{})
		require.NoError(t, err)
	}
	s.Snapshot()

	_, err := s.RemoveItems([]string{"A"}, 0)
	require.NoError(t, err)
	a, err := s.PoolItem("A")
	require.NoError(t, err)
	_, err = s.AddItem(a, Target{})
	require.NoError(t, err)

	slot, _ := s.Slot(0)
	assert.Equal(t, []string{"B", "A"}, itemNames(slot.Items))
	assert.True(t, s.IsChanged(), "same membership, different order")
}

func TestIsChanged_RevertingRestoresClean(t *testing.T) {
	s := newSchedule(t, 2, 1, 200)
	s.Snapshot()
	_, err := s.AddItem(item("A", 10, 1), Target{Slot: 1})
	require.NoError(t, err)
	_, err = s.RemoveItems([]string{"A"}, 1)
	require.NoError(t, err)
	assert.False(t, s.IsChanged())
}

func TestFingerprint(t *testing.T) {
	s := newSchedule(t, 2, 1, 200)
	base := Fingerprint(s.ListSlots())
	assert.Equal(t, base, Fingerprint(s.Committed()))

	_, err := s.AddItem(item("A", 10, 1), Target{Slot: 1})
	require.NoError(t, err)
	assert.NotEqual(t, base, Fingerprint(s.ListSlots()))

	s.Restore(s.ListSlots())
	assert.False(t, s.IsChanged())
}
