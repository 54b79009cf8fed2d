package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedProvider", ErrUnsupportedProvider},
		{"ErrTemplateNotFound", ErrTemplateNotFound},
		{"ErrTemplateMalformed", ErrTemplateMalformed},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrGenerationFailed", ErrGenerationFailed},
		{"ErrGenerationTimeout", ErrGenerationTimeout},
		{"ErrIndexDisabled", ErrIndexDisabled},
		{"ErrSessionNotFound", ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrTemplateMalformed_IsTemplateNotFound(t *testing.T) {
	err := fmt.Errorf("loading lean: %w", ErrTemplateMalformed)

	assert.True(t, errors.Is(err, ErrTemplateMalformed))
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
	assert.False(t, errors.Is(ErrTemplateNotFound, ErrTemplateMalformed))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("target_users", "be more specific")

	assert.Equal(t, "target_users: be more specific", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidInput))

	var ve *ValidationError
	wrapped := fmt.Errorf("checking input: %w", err)
	assert.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "target_users", ve.Field)
}

func TestValidationError_NoField(t *testing.T) {
	err := &ValidationError{Message: "bad"}
	assert.Equal(t, "bad", err.Error())
}

func TestGenerationError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := &GenerationError{Document: "pmd", Section: "goals", Err: cause}

	assert.Contains(t, err.Error(), `section "goals"`)
	assert.True(t, errors.Is(err, ErrGenerationFailed))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, ErrInvalidInput))
}

func TestGenerationError_WholeDocument(t *testing.T) {
	err := &GenerationError{Document: "spec", Err: ErrGenerationTimeout}

	assert.Equal(t, "generating spec: generation timed out", err.Error())
	assert.True(t, errors.Is(err, ErrGenerationTimeout))
}
