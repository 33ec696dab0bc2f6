package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "campuscard/pkg/domain-errors"
)

func TestCheckStringLength(t *testing.T) {
	assert.NoError(t, CheckStringLength("token", strings.Repeat("a", MaxTokenLength), MaxTokenLength))

	err := CheckStringLength("token", strings.Repeat("a", MaxTokenLength+1), MaxTokenLength)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Contains(t, err.Error(), "token exceeds max length of 512")
}
