/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every engine error is an input-validation error raised synchronously
  by the call that violates the precondition. Nothing is retried.

ERROR CATEGORIES:
  1. Pricing errors - invalid fee profile, invalid advance range, bad rates
  2. Lookup errors - unknown unit (surfaced by the unit directory)
  3. Collaborator errors - bill not found, duplicate bill, invalid payment status

NOT ERRORS:
  Division by zero in percentage math yields 0 (see Percentage in types.go).

SEE ALSO:
  - fee.go, proration.go: raise pricing errors
  - repository.go: collaborators raise lookup errors
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidFeeProfile is returned when base rent is missing or negative.
	ErrInvalidFeeProfile = errors.New("invalid fee profile")

	// ErrInvalidRange is returned when an advance span ends on or before its start.
	ErrInvalidRange = errors.New("invalid range: end must be after start")

	// ErrUnknownUnit is returned when a unit has no profile or label in the directory.
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrInvalidRates is returned when a configured charge rate is negative.
	ErrInvalidRates = errors.New("invalid charge rates")

	// ErrBillNotFound is returned by repositories when a bill ID does not exist.
	ErrBillNotFound = errors.New("bill not found")

	// ErrDuplicateBill is returned when a bill ID is saved twice.
	ErrDuplicateBill = errors.New("duplicate bill id")

	// ErrInvalidPaymentStatus is returned when a payment status is not pending, paid or rejected.
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidFeeProfileError names the offending unit and why its profile was refused.
type InvalidFeeProfileError struct {
	UnitID UnitID
	Reason string
}

func (e *InvalidFeeProfileError) Error() string {
	if e.UnitID == "" {
		return fmt.Sprintf("invalid fee profile: %s", e.Reason)
	}
	return fmt.Sprintf("invalid fee profile for unit %s: %s", e.UnitID, e.Reason)
}

func (e *InvalidFeeProfileError) Unwrap() error {
	return ErrInvalidFeeProfile
}

// InvalidRangeError carries the rejected advance span.
type InvalidRangeError struct {
	Start Date
	End   Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s is not after start %s", e.End, e.Start)
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}

// UnknownUnitError names the unit the directory could not resolve.
type UnknownUnitError struct {
	UnitID UnitID
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown unit: %s", e.UnitID)
}

func (e *UnknownUnitError) Unwrap() error {
	return ErrUnknownUnit
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidFeeProfile) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidPaymentStatus) ||
		errors.Is(err, ErrInvalidRates)
}

// IsConflict returns true if the write collided with an existing record.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateBill)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownUnit) ||
		errors.Is(err, ErrBillNotFound)
}
