package atmos

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to test for them; the typed errors below
// wrap them with detail.
var (
	ErrVectorLengthMismatch = errors.New("gas and mole vectors differ in length")
	ErrGasNotFound          = errors.New("gas not found in mixture")
	ErrGasMixtureEmpty      = errors.New("gas mixture is empty")
	ErrNegativeAmount       = errors.New("amount must not be negative")
	ErrReactionInvariant    = errors.New("reaction effect invariant violated")
	ErrSelfMerge            = errors.New("cannot merge a gas mixture into itself")
)

// VectorLengthMismatchError is returned by NewMixture when the species and
// mole slices have different lengths.
type VectorLengthMismatchError struct {
	GasLength  int
	MoleLength int
}

func (e *VectorLengthMismatchError) Error() string {
	return fmt.Sprintf("gas vector has %d entries but mole vector has %d", e.GasLength, e.MoleLength)
}

func (e *VectorLengthMismatchError) Unwrap() error { return ErrVectorLengthMismatch }

// GasNotFoundError is returned when mutating a gas that was never asserted
// into the mixture.
type GasNotFoundError struct {
	Gas SpeciesID
}

func (e *GasNotFoundError) Error() string {
	return fmt.Sprintf("couldn't find gas '%s'; did you call AssertGas beforehand?", e.Gas)
}

func (e *GasNotFoundError) Unwrap() error { return ErrGasNotFound }

// NegativeAmountError reports a negative or NaN removal amount, or a ratio
// that is not positive.
type NegativeAmountError struct {
	Value float64
}

func (e *NegativeAmountError) Error() string {
	return fmt.Sprintf("value %v is less than zero or not a number", e.Value)
}

func (e *NegativeAmountError) Unwrap() error { return ErrNegativeAmount }

// ReactionInvariantError signals a rule set bug: an effect needed something
// the mixture could not provide, such as a non-zero heat capacity.
type ReactionInvariantError struct {
	RuleID string
	Reason string
}

func (e *ReactionInvariantError) Error() string {
	if e.RuleID == "" {
		return "reaction invariant violated: " + e.Reason
	}
	return fmt.Sprintf("reaction %s: invariant violated: %s", e.RuleID, e.Reason)
}

func (e *ReactionInvariantError) Unwrap() error { return ErrReactionInvariant }
