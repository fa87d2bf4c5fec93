package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Title string   `json:"title" validate:"notblank,max=10"`
	Tags  []string `json:"tags" validate:"min=1"`
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(sampleInput{Title: "ok", Tags: []string{"go"}}))

	err := Validate(sampleInput{Title: "   "})
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	fields := map[string]string{}
	for _, f := range ve.Fields {
		fields[f.Field] = f.Error
	}
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "tags")
	assert.Equal(t, "title cannot be blank", fields["title"])
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(Invalid("sortBy", "unknown sort key")))
	assert.False(t, IsValidationError(ErrNotFound))
}
