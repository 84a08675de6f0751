package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the scheduling engine and the layers above it.
var (
	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrRateIncompatible is returned when a rate does not divide the cycle.
	ErrRateIncompatible = errors.New("rate incompatible with cycle")

	// ErrConfirmationDeclined is returned when a destructive change was refused.
	ErrConfirmationDeclined = errors.New("confirmation declined")

	// ErrNotFound is returned when a referenced slot, sub-slot or item is absent.
	ErrNotFound = errors.New("not found")

	// ErrRevisionCorrupt is returned when a stored revision no longer matches
	// the fingerprint written with it.
	ErrRevisionCorrupt = errors.New("stored revision does not match its fingerprint")
)

// ValidationRule names the input rule an edit violated.
type ValidationRule string

const (
	RuleNameEmpty           ValidationRule = "name_empty"
	RuleNameFormat          ValidationRule = "name_format"
	RuleDuplicateName       ValidationRule = "duplicate_name"
	RuleDuplicateItem       ValidationRule = "duplicate_item"
	RuleIdentifierFormat    ValidationRule = "identifier_format"
	RuleDuplicateIdentifier ValidationRule = "duplicate_identifier"
	RuleIndexRange          ValidationRule = "index_range"
	RuleNoSubSlots          ValidationRule = "no_sub_slots"
	RuleMinimumSubSlots     ValidationRule = "minimum_sub_slots"
	RuleCapacity            ValidationRule = "capacity"
	RuleCycle               ValidationRule = "cycle"
	RuleItem                ValidationRule = "item"
)

// ValidationError reports a single rejected input together with the rule it broke.
type ValidationError struct {
	Rule  ValidationRule
	Field string
	Value string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s %q: %s (%s)", e.Field, e.Value, e.Msg, e.Rule)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Msg, e.Rule)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// RuleOf returns the rule of the first *ValidationError in err's chain.
func RuleOf(err error) (ValidationRule, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Rule, true
	}
	return "", false
}
