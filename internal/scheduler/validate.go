package scheduler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alexanderramin/cadence/internal/domain"
)

// DefaultNamePattern accepts plain alphanumeric names.
var DefaultNamePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Validator enforces the naming and identifier rules for slots and
// sub-slots.
type Validator struct {
	namePattern *regexp.Regexp
}

func NewValidator(namePattern *regexp.Regexp) *Validator {
	if namePattern == nil {
		namePattern = DefaultNamePattern
	}
	return &Validator{namePattern: namePattern}
}

// Name checks name against the character class and its siblings.
func (v *Validator) Name(field, name string, siblings []string) error {
	if name == "" {
		return &domain.ValidationError{Rule: domain.RuleNameEmpty, Field: field, Msg: "is required"}
	}
	if !v.namePattern.MatchString(name) {
		return &domain.ValidationError{
			Rule:  domain.RuleNameFormat,
			Field: field,
			Value: name,
			Msg:   fmt.Sprintf("must match %s", v.namePattern),
		}
	}
	for _, sib := range siblings {
		if sib == name {
			return &domain.ValidationError{Rule: domain.RuleDuplicateName, Field: field, Value: name, Msg: "already in use"}
		}
	}
	return nil
}

// ParseIdentifier parses a hexadecimal identifier, with or without a 0x
// prefix.
func ParseIdentifier(id string) (uint64, error) {
	trimmed := strings.TrimSpace(id)
	if len(trimmed) > 1 && trimmed[0] == '0' && (trimmed[1] == 'x' || trimmed[1] == 'X') {
		trimmed = trimmed[2:]
	}
	n, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil || trimmed == "" {
		return 0, &domain.ValidationError{Rule: domain.RuleIdentifierFormat, Field: "identifier", Value: id, Msg: "must be hexadecimal"}
	}
	return n, nil
}

// CheckSlots validates a complete slot list: names, formats and the shared
// identifier namespace.
func (v *Validator) CheckSlots(slots []*domain.Slot) error {
	var slotNames []string
	ids := make(map[uint64]string)
	claim := func(owner, id string) error {
		if id == "" {
			return nil
		}
		n, err := ParseIdentifier(id)
		if err != nil {
			return err
		}
		if prev, ok := ids[n]; ok {
			return &domain.ValidationError{
				Rule:  domain.RuleDuplicateIdentifier,
				Field: owner,
				Value: id,
				Msg:   "already used by " + prev,
			}
		}
		ids[n] = owner
		return nil
	}

	for i, slot := range slots {
		if err := v.Name(fmt.Sprintf("slots[%d].name", i), slot.Name, slotNames); err != nil {
			return err
		}
		slotNames = append(slotNames, slot.Name)
		if err := claim(slot.Name, slot.Identifier); err != nil {
			return err
		}
		if !slot.HasSubSlots() {
			continue
		}
		var subNames []string
		for j, sub := range slot.SubSlots {
			if err := v.Name(fmt.Sprintf("slots[%d].sub_slots[%d].name", i, j), sub.Name, subNames); err != nil {
				return err
			}
			subNames = append(subNames, sub.Name)
			if err := claim(sub.Name, sub.Identifier); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenameSlot renames a slot (Sub 0) or one of its sub-slots.
func (s *Schedule) RenameSlot(t Target, name string) error {
	if err := s.checkSlot(t.Slot); err != nil {
		return err
	}
	slot := s.slots[t.Slot]
	if t.Sub == 0 {
		var siblings []string
		for i, other := range s.slots {
			if i != t.Slot {
				siblings = append(siblings, other.Name)
			}
		}
		if err := s.validator.Name("slot.name", name, siblings); err != nil {
			return err
		}
		slot.Name = name
		if !slot.HasSubSlots() {
			slot.SubSlots[0].Name = name
		}
		return nil
	}

	if _, err := s.container(t); err != nil {
		return err
	}
	var siblings []string
	for j, sub := range slot.SubSlots {
		if j != t.Sub-1 {
			siblings = append(siblings, sub.Name)
		}
	}
	if err := s.validator.Name("sub_slot.name", name, siblings); err != nil {
		return err
	}
	slot.SubSlots[t.Sub-1].Name = name
	return nil
}

// SetIdentifier assigns a hexadecimal identifier to a slot or sub-slot. An
// empty id clears it.
func (s *Schedule) SetIdentifier(t Target, id string) error {
	if _, err := s.container(t); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id != "" {
		n, err := ParseIdentifier(id)
		if err != nil {
			return err
		}
		if owner, taken := s.identifierOwner(n, t); taken {
			return &domain.ValidationError{
				Rule:  domain.RuleDuplicateIdentifier,
				Field: t.String(),
				Value: id,
				Msg:   "already used by " + owner,
			}
		}
	}
	slot := s.slots[t.Slot]
	if t.Sub == 0 {
		slot.Identifier = id
	} else {
		slot.SubSlots[t.Sub-1].Identifier = id
	}
	return nil
}

// identifierOwner finds which slot or sub-slot other than except holds n.
func (s *Schedule) identifierOwner(n uint64, except Target) (string, bool) {
	matches := func(id string) bool {
		if id == "" {
			return false
		}
		v, err := ParseIdentifier(id)
		return err == nil && v == n
	}
	for i, slot := range s.slots {
		if (Target{Slot: i}) != except && matches(slot.Identifier) {
			return slot.Name, true
		}
		if !slot.HasSubSlots() {
			continue
		}
		for j, sub := range slot.SubSlots {
			if (Target{Slot: i, Sub: j + 1}) != except && matches(sub.Identifier) {
				return sub.Name, true
			}
		}
	}
	return "", false
}
