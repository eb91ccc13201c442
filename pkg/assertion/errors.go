package assertion

import (
	"errors"
	"fmt"
)

// MismatchError is returned when a comparator does not hold.
type MismatchError struct {
	// Matcher is the matcher name, e.g. "to_be".
	Matcher string

	// Actual is the observed value.
	Actual any

	// Expected is the value the matcher expected.
	Expected any

	// Message names both values.
	Message string
}

func (e *MismatchError) Error() string {
	return e.Message
}

// UsageError is returned when a comparator is applied to a value
// it cannot work with, such as Rejects on a non-pending value.
type UsageError struct {
	Matcher string
	Message string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Matcher, e.Message)
}

// IsMismatch reports whether err is or wraps a MismatchError.
func IsMismatch(err error) bool {
	var m *MismatchError
	return errors.As(err, &m)
}

// IsUsage reports whether err is or wraps a UsageError.
func IsUsage(err error) bool {
	var u *UsageError
	return errors.As(err, &u)
}
