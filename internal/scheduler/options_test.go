package scheduler

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerateOptions_FullRateEqualStride(t *testing.T) {
	// 4 slots at 1 slot/s: period 4 s. 0.5 Hz fires twice per cycle.
	s := newSchedule(t, 4, 1, 400)

	opts, err := s.EnumerateOptions(0.5)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.Equal(t, []int{0, 2}, opts[0].Slots)
	assert.Equal(t, []int{1, 3}, opts[1].Slots)
	assert.Equal(t, "slots 0, 2", opts[0].String())
	assert.Equal(t, CombinationSlots, opts[0].Kind)
}

func TestEnumerateOptions_OncePerCycle(t *testing.T) {
	s := newSchedule(t, 4, 1, 400)
	opts, err := s.EnumerateOptions(0.25)
	require.NoError(t, err)
	require.Len(t, opts, 4)
	for i, o := range opts {
		assert.Equal(t, []int{i}, o.Slots)
	}
}

func TestEnumerateOptions_EverySlot(t *testing.T) {
	s := newSchedule(t, 4, 1, 400)
	opts, err := s.EnumerateOptions(1)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, []int{0, 1, 2, 3}, opts[0].Slots)
}

func TestEnumerateOptions_RateIncompatible(t *testing.T) {
	s := newSchedule(t, 4, 1, 400)

	for _, rate := range []float64{0.75, 0.3, 2} {
		_, err := s.EnumerateOptions(rate)
		assert.ErrorIs(t, err, domain.ErrRateIncompatible, "rate %g", rate)
	}
}

func TestEnumerateOptions_InvalidRate(t *testing.T) {
	s := newSchedule(t, 4, 1, 400)
	_, err := s.EnumerateOptions(0)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = s.EnumerateOptions(-1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEnumerateOptions_SubRate(t *testing.T) {
	// One slot per second, period 1: 0.5 Hz is slower than the cycle.
	s := newSchedule(t, 1, 1, 100)
	subdivide(t, s, 0, 4)

	opts, err := s.EnumerateOptions(0.5)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.Equal(t, []int{1, 3}, opts[0].SubSlots)
	assert.Equal(t, []int{2, 4}, opts[1].SubSlots)
	assert.Equal(t, CombinationSubSlots, opts[0].Kind)
	assert.Equal(t, "slot 0: sub 1, 3", opts[0].String())
}

func TestEnumerateOptions_SubRateExcludesNonDividingSlots(t *testing.T) {
	s := newSchedule(t, 3, 3, 300)
	subdivide(t, s, 0, 4)
	subdivide(t, s, 1, 3)
	// slot 2 keeps only its default sub-slot

	opts, err := s.EnumerateOptions(0.25) // quarter of a cycle
	require.NoError(t, err)
	require.Len(t, opts, 4, "only slot 0 has a sub-slot count divisible by the rate")
	for o, c := range opts {
		assert.Equal(t, []int{0}, c.Slots)
		assert.Equal(t, []int{o + 1}, c.SubSlots)
	}
}

func TestEnumerateOptions_SubRateNoCandidates(t *testing.T) {
	s := newSchedule(t, 2, 2, 100)
	opts, err := s.EnumerateOptions(0.5)
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestEnumerateOptions_DoesNotMutate(t *testing.T) {
	s := newSchedule(t, 4, 1, 400)
	_, err := s.AddItem(item("A", 5, 1), Target{Slot: 1})
	require.NoError(t, err)
	s.Snapshot()

	_, err = s.EnumerateOptions(0.5)
	require.NoError(t, err)
	assert.False(t, s.IsChanged())
}

// TestEnumerateOptions_Invariants_PartitionSlots property-tests that full-rate
// options split the slot set into disjoint equal-size stride groups.
func TestEnumerateOptions_Invariants_PartitionSlots(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		slotCount := rng.Intn(24) + 1
		slotsPerSecond := float64(rng.Intn(4) + 1)
		var divisors []int
		for d := 1; d <= slotCount; d++ {
			if slotCount%d == 0 {
				divisors = append(divisors, d)
			}
		}
		occurrences := divisors[rng.Intn(len(divisors))]
		s := newSchedule(t, slotCount, slotsPerSecond, slotCount*10)
		rate := float64(occurrences) / s.Cycle().Period()

		opts, err := s.EnumerateOptions(rate)
		require.NoError(t, err, "trial %d", trial)

		numOptions := slotCount / occurrences
		require.Len(t, opts, numOptions, "trial %d", trial)

		var all []int
		for _, o := range opts {
			assert.Len(t, o.Slots, occurrences, "trial %d: equal group size", trial)
			for k := 1; k < len(o.Slots); k++ {
				assert.Equal(t, numOptions, o.Slots[k]-o.Slots[k-1], "trial %d: stride", trial)
			}
			all = append(all, o.Slots...)
		}
		sort.Ints(all)
		for i := range all {
			assert.Equal(t, i, all[i], "trial %d: groups partition all slots", trial)
		}
	}
}
