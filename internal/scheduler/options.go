package scheduler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexanderramin/cadence/internal/domain"
)

// rateTolerance absorbs floating point noise when checking that a rate maps
// onto a whole number of occurrences.
const rateTolerance = 1e-6

type CombinationKind string

const (
	CombinationSlots    CombinationKind = "slots"
	CombinationSubSlots CombinationKind = "sub_slots"
)

// Combination is one legal placement for an item of a given rate.
type Combination struct {
	Kind  CombinationKind
	Index int

	// Slots holds the selected slot indexes for full-rate placements, or
	// the single owning slot for sub-slot placements.
	Slots []int

	// SubSlots holds 1-based sub-slot positions within Slots[0].
	SubSlots []int
}

// Targets expands the combination into individual placement targets.
func (c Combination) Targets() []Target {
	if c.Kind == CombinationSubSlots {
		out := make([]Target, len(c.SubSlots))
		for i, p := range c.SubSlots {
			out[i] = Target{Slot: c.Slots[0], Sub: p}
		}
		return out
	}
	out := make([]Target, len(c.Slots))
	for i, idx := range c.Slots {
		out[i] = Target{Slot: idx}
	}
	return out
}

func (c Combination) String() string {
	if c.Kind == CombinationSubSlots {
		return fmt.Sprintf("slot %d: sub %s", c.Slots[0], joinInts(c.SubSlots))
	}
	return "slots " + joinInts(c.Slots)
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

// EnumerateOptions lists every combination an item firing at rateHz could be
// spread across. Items at least as fast as the cycle get equal-stride slot
// sets; slower items get stride-spaced sub-slots of qualifying slots. It does
// not modify the schedule.
func (s *Schedule) EnumerateOptions(rateHz float64) ([]Combination, error) {
	if math.IsNaN(rateHz) || math.IsInf(rateHz, 0) || rateHz <= 0 {
		return nil, &domain.ValidationError{
			Rule:  domain.RuleItem,
			Field: "rate_hz",
			Value: strconv.FormatFloat(rateHz, 'g', -1, 64),
			Msg:   "must be a positive number",
		}
	}
	perCycle := rateHz * s.cycle.Period()
	if perCycle >= 1-rateTolerance {
		return s.slotCombinations(rateHz, perCycle)
	}
	return s.subSlotCombinations(perCycle), nil
}

func (s *Schedule) slotCombinations(rateHz, perCycle float64) ([]Combination, error) {
	rounded := math.Round(perCycle)
	if math.Abs(perCycle-rounded) > rateTolerance {
		return nil, fmt.Errorf("%g Hz is %g occurrences per cycle, not a whole number: %w",
			rateHz, perCycle, domain.ErrRateIncompatible)
	}
	occurrences := int(rounded)
	slotCount := s.cycle.SlotCount
	if occurrences > slotCount || slotCount%occurrences != 0 {
		return nil, fmt.Errorf("%d occurrences per cycle do not divide %d slots: %w",
			occurrences, slotCount, domain.ErrRateIncompatible)
	}

	numOptions := slotCount / occurrences
	out := make([]Combination, numOptions)
	for c := 0; c < numOptions; c++ {
		slots := make([]int, occurrences)
		for k := range slots {
			slots[k] = c + k*numOptions
		}
		out[c] = Combination{Kind: CombinationSlots, Index: c, Slots: slots}
	}
	return out, nil
}

func (s *Schedule) subSlotCombinations(perCycle float64) []Combination {
	var out []Combination
	for i, slot := range s.slots {
		n := slot.SubSlotCount()
		picksF := float64(n) * perCycle
		picks := int(math.Round(picksF))
		if picks < 1 || math.Abs(picksF-float64(picks)) > rateTolerance || n%picks != 0 {
			continue
		}
		optionCount := n / picks
		for o := 0; o < optionCount; o++ {
			positions := make([]int, picks)
			for k := range positions {
				positions[k] = o + 1 + k*optionCount
			}
			out = append(out, Combination{
				Kind:     CombinationSubSlots,
				Index:    o,
				Slots:    []int{i},
				SubSlots: positions,
			})
		}
	}
	return out
}
