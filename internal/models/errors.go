package models

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by the typed errors below
var (
	ErrUnknownNutrient     = errors.New("nutrient not present in any food")
	ErrContradictoryBounds = errors.New("contradictory bounds")
	ErrUnitMismatch        = errors.New("unit does not match nutrient")
	ErrNegativeAmount      = errors.New("negative nutrient amount")
)

// ConfigurationError reports an invalid solve configuration supplied by the
// caller. It is returned immediately and never downgraded to a solve status.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration for %q: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid configuration for %q: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// DataIntegrityError reports malformed or contradictory dataset content. The
// offending value is surfaced to the caller, never silently corrected.
type DataIntegrityError struct {
	FoodID int
	Field  string
	Reason string
	Err    error
}

func (e *DataIntegrityError) Error() string {
	if e.FoodID != 0 {
		return fmt.Sprintf("data integrity violation in food %d, field %q: %s", e.FoodID, e.Field, e.Reason)
	}
	return fmt.Sprintf("data integrity violation in field %q: %s", e.Field, e.Reason)
}

func (e *DataIntegrityError) Unwrap() error { return e.Err }
