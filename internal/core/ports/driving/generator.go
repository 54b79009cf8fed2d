package driving

import (
	"context"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

// Validator scores free-text input against the core requirement fields.
type Validator interface {
	// Validate extracts core fields from text. Pure and deterministic.
	Validate(text string) domain.ValidationResult

	// IsUnderspecified reports whether text is too thin to generate from.
	IsUnderspecified(text string) bool

	// ClarificationQuestions maps missing field names to canned questions.
	// Unknown names are skipped.
	ClarificationQuestions(missing []string) []string

	// ValidateField checks one core field value on its own.
	ValidateField(f domain.CoreField, value string) error
}

// TemplateService exposes template schemas.
type TemplateService interface {
	// Load returns the template for kind.
	Load(ctx context.Context, kind string) (*domain.Template, error)

	// RequiredSections returns the required section keys for kind.
	RequiredSections(ctx context.Context, kind string) ([]string, error)

	// Available lists every loadable template.
	Available(ctx context.Context) ([]domain.TemplateInfo, error)

	// ValidateTemplateData reports required sections of kind left empty in data.
	ValidateTemplateData(ctx context.Context, kind string, data map[string]string) domain.TemplateDataReport
}

// Generator produces document content with the LLM.
// It proposes content; callers decide whether to persist it.
type Generator interface {
	// GenerateDocument generates every section of a template.
	GenerateDocument(ctx context.Context, req domain.GenerateRequest) (*domain.GeneratedDocument, error)

	// GenerateSpec derives an engineering spec from a source document.
	GenerateSpec(
		ctx context.Context,
		source *domain.Document,
		inputs domain.EngineeringInputs,
	) (*domain.EngineeringSpec, error)

	// UpdateDocument proposes edits to linked documents after a change.
	UpdateDocument(
		ctx context.Context,
		doc *domain.Document,
		changes domain.Changes,
		linked []domain.Document,
	) (*domain.UpdatePlan, error)
}
