package scheduler

import (
	"testing"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBitPacker(t *testing.T) {
	cases := []struct {
		name  string
		items []*domain.Item
		want  int
	}{
		{"empty", nil, 0},
		{"bytes only", []*domain.Item{item("A", 4, 1), item("B", 2, 1)}, 6},
		{"bits share a byte", []*domain.Item{bitField("F1", 3), bitField("F2", 5)}, 1},
		{"bits spill", []*domain.Item{bitField("F1", 6), bitField("F2", 6)}, 2},
		{"byte item closes run", []*domain.Item{bitField("F1", 1), item("A", 2, 1), bitField("F2", 1)}, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BitPacker{}.PackedSize(tc.items))
		})
	}
}

func TestWithPackedSizer(t *testing.T) {
	flat := PackedSizeFunc(func(items []*domain.Item) int { return 7 * len(items) })
	s := newSchedule(t, 2, 1, 100, WithPackedSizer(flat))

	_, err := s.AddItem(item("A", 1, 1), Target{Slot: 0})
	assert.NoError(t, err)
	rem, _ := s.Remaining(0)
	assert.Equal(t, 43, rem)
}
