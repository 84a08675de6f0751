package scheduler

import (
	"regexp"
	"testing"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameSlot(t *testing.T) {
	s := newSchedule(t, 3, 1, 300)

	cases := []struct {
		name    string
		newName string
		rule    domain.ValidationRule
	}{
		{"empty", "", domain.RuleNameEmpty},
		{"punctuation", "HK-1", domain.RuleNameFormat},
		{"sibling", "M2", domain.RuleDuplicateName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.RenameSlot(Target{Slot: 0}, tc.newName)
			rule, ok := domain.RuleOf(err)
			require.True(t, ok)
			assert.Equal(t, tc.rule, rule)
		})
	}

	require.NoError(t, s.RenameSlot(Target{Slot: 0}, "m2"), "names are case-sensitive")
	require.NoError(t, s.RenameSlot(Target{Slot: 1}, "M1"), "keeping its own name is allowed")
	slot, _ := s.Slot(0)
	assert.Equal(t, "m2", slot.Name)
	assert.Equal(t, "m2", slot.SubSlots[0].Name, "default sub-slot follows its slot")
}

func TestRenameSubSlot(t *testing.T) {
	s := newSchedule(t, 2, 1, 200)
	subdivide(t, s, 0, 2)

	err := s.RenameSlot(Target{Slot: 0, Sub: 2}, "M0")
	rule, _ := domain.RuleOf(err)
	assert.Equal(t, domain.RuleDuplicateName, rule)

	require.NoError(t, s.RenameSlot(Target{Slot: 0, Sub: 2}, "M1"), "sub-slot siblings are its own sub-slots")
	err = s.RenameSlot(Target{Slot: 1, Sub: 1}, "X")
	rule, _ = domain.RuleOf(err)
	assert.Equal(t, domain.RuleNoSubSlots, rule)
}

func TestWithNamePattern(t *testing.T) {
	s := newSchedule(t, 2, 1, 200, WithNamePattern(regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)))
	assert.NoError(t, s.RenameSlot(Target{Slot: 0}, "HK_1"))
	assert.Error(t, s.RenameSlot(Target{Slot: 1}, "hk"))
}

func TestSetIdentifier(t *testing.T) {
	s := newSchedule(t, 3, 1, 300)
	subdivide(t, s, 2, 2)

	require.NoError(t, s.SetIdentifier(Target{Slot: 0}, "0x1A"))

	cases := []struct {
		name   string
		target Target
		id     string
		rule   domain.ValidationRule
	}{
		{"not hex", Target{Slot: 1}, "XYZ", domain.RuleIdentifierFormat},
		{"bare prefix", Target{Slot: 1}, "0x", domain.RuleIdentifierFormat},
		{"same value other spelling", Target{Slot: 1}, "1a", domain.RuleDuplicateIdentifier},
		{"sub-slot shares namespace", Target{Slot: 2, Sub: 1}, "001A", domain.RuleDuplicateIdentifier},
		{"out of range", Target{Slot: 7}, "1", domain.RuleIndexRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.SetIdentifier(tc.target, tc.id)
			rule, ok := domain.RuleOf(err)
			require.True(t, ok, "err=%v", err)
			assert.Equal(t, tc.rule, rule)
		})
	}

	require.NoError(t, s.SetIdentifier(Target{Slot: 0}, "1A"), "re-setting its own identifier is allowed")
	require.NoError(t, s.SetIdentifier(Target{Slot: 2, Sub: 2}, "2B"))
	require.NoError(t, s.SetIdentifier(Target{Slot: 0}, ""), "clearing frees the value")
	require.NoError(t, s.SetIdentifier(Target{Slot: 1}, "1A"))
}

func TestParseIdentifier(t *testing.T) {
	n, err := ParseIdentifier("0xff")
	require.NoError(t, err)
	assert.Equal(t, uint64(255), n)

	n, err = ParseIdentifier(" 10 ")
	require.NoError(t, err)
	assert.Equal(t, uint64(16), n)

	n, err = ParseIdentifier("0X1f")
	require.NoError(t, err)
	assert.Equal(t, uint64(31), n)

	for _, bad := range []string{"-1", "0x", "0x0X5", "0x0x5", "0Xx5", ""} {
		_, err = ParseIdentifier(bad)
		assert.ErrorIs(t, err, domain.ErrValidation, "input %q", bad)
	}
}
