package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedProvider indicates an unknown AI provider.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrTemplateNotFound indicates no schema exists for a template kind.
	// Callers treat it as "no sections available".
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateMalformed indicates a template source could not be decoded.
	// It also matches ErrTemplateNotFound so callers can degrade uniformly.
	ErrTemplateMalformed = &malformedTemplateError{}

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Generation features are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrGenerationFailed indicates the LLM errored while producing content.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrGenerationTimeout indicates a generation call exceeded its deadline.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrIndexDisabled indicates the external search index is not configured.
	ErrIndexDisabled = errors.New("search index disabled")

	// ErrSessionNotFound indicates an unknown conversation session.
	ErrSessionNotFound = errors.New("session not found")
)

type malformedTemplateError struct{}

func (*malformedTemplateError) Error() string { return "template malformed" }

func (*malformedTemplateError) Is(target error) bool {
	return target == ErrTemplateNotFound
}

// ValidationError reports a field-level or schema check failure.
type ValidationError struct {
	// Field is the name of the offending field.
	Field string

	// Message explains what is wrong, suitable for showing to a user.
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports ValidationError as a kind of ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// GenerationError carries the document and section that failed to generate.
type GenerationError struct {
	// Document is the document kind or title being generated.
	Document string

	// Section is the section key, empty for whole-document steps.
	Section string

	// Err is the underlying cause.
	Err error
}

func (e *GenerationError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("generating %s: %v", e.Document, e.Err)
	}
	return fmt.Sprintf("generating %s section %q: %v", e.Document, e.Section, e.Err)
}

// Unwrap returns the underlying cause.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is reports GenerationError as a kind of ErrGenerationFailed.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}
