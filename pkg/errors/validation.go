package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxElementIDLength bounds element GUIDs accepted from documents and actions.
const maxElementIDLength = 256

// ValidateElementID validates an element GUID supplied by a caller.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No surrounding whitespace
//   - Maximum length of 256 characters
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "element id cannot be empty")
	}

	if len(id) > maxElementIDLength {
		return New(ErrCodeInvalidInput, "element id too long (max %d characters)", maxElementIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "element id contains invalid control characters")
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidInput, "element id %q has surrounding whitespace", id)
	}

	return nil
}

// ValidateProgress checks that an animation progress value lies in [0, 1].
func ValidateProgress(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return New(ErrCodeInvalidInput, "progress %v outside [0, 1]", p)
	}
	return nil
}
