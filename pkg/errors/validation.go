package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxNameLength bounds recipe, item and machine names.
const maxNameLength = 256

// ValidateName validates a recipe, item or machine name for display and lookup.
// The what argument names the kind of thing being validated in the message.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only names
//   - No control characters
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateName(what, name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "%s name cannot be empty", what)
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "%s name too long (max %d characters)", what, maxNameLength)
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "%s name contains invalid control characters", what)
		}
	}

	return nil
}

// ValidateRate validates a throughput in units per second.
// Rates must be finite and strictly positive.
func ValidateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return New(ErrCodeInvalidInput, "rate must be a finite number")
	}
	if rate <= 0 {
		return New(ErrCodeInvalidInput, "rate must be positive, got %g", rate)
	}
	return nil
}
