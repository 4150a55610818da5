package behavior

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidInput is matched by every InvalidInputError.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError describes a rejected prediction request.
type InvalidInputError struct {
	Field string
	Value float64
	// Input is the raw text when it could not be parsed; Value is unset then.
	Input  string
	Reason string
}

const notANumber = "not a number"

func (e *InvalidInputError) Error() string {
	if e.Reason == notANumber {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// ValidateMinutes rejects negative or non-finite durations.
func ValidateMinutes(field string, v float64) error {
	switch {
	case math.IsNaN(v) || math.Abs(v) > maxMinutes:
		return &InvalidInputError{Field: field, Value: v, Reason: "must be a finite number"}
	case v < 0:
		return &InvalidInputError{Field: field, Value: v, Reason: "must not be negative"}
	}
	return nil
}

// ParseMinutes parses and validates a duration typed by the user.
func ParseMinutes(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &InvalidInputError{Field: field, Input: s, Reason: notANumber}
	}
	if err := ValidateMinutes(field, v); err != nil {
		return 0, err
	}
	return v, nil
}

// maxMinutes bounds inputs well below float overflow in squared distances.
const maxMinutes = 1e12
