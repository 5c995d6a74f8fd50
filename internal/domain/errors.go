package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying all failures the analytical core can produce.
// Handlers translate these to HTTP statuses; insufficient data is a normal,
// reportable outcome rather than a fault.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInsufficientData = errors.New("insufficient data")
	ErrPolicyViolation  = errors.New("policy violation")
)

// PolicyError identifies which reallocation rule a category broke, so the
// caller can surface a precise message.
type PolicyError struct {
	Category string
	Rule     string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("policy violation for category %q: %s", e.Category, e.Rule)
}

func (e *PolicyError) Unwrap() error {
	return ErrPolicyViolation
}

// NewPolicyError creates a PolicyError for the given category and rule
func NewPolicyError(category, rule string) error {
	return &PolicyError{Category: category, Rule: rule}
}

// InvalidInputf wraps ErrInvalidInput with a formatted message
func InvalidInputf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidInput}, args...)...)
}
