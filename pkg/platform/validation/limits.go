package validation

import (
	"fmt"

	dErrors "campuscard/pkg/domain-errors"
)

// MaxBodySize bounds bridge request bodies.
const MaxBodySize = 16 * 1024

// Field length limits for card profiles.
const (
	MaxTokenLength      = 512
	MaxNameLength       = 200
	MaxEmailLength      = 255
	MaxRoleLength       = 64
	MaxValidUntilLength = 64
)

// CheckStringLength validates that a string does not exceed max bytes.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
