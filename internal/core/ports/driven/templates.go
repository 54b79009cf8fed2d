package driven

import (
	"context"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

// TemplateSource loads template schemas from storage.
type TemplateSource interface {
	// Load returns the template for kind.
	// Returns domain.ErrTemplateNotFound when no schema exists and
	// domain.ErrTemplateMalformed when the stored schema cannot be decoded.
	Load(ctx context.Context, kind string) (*domain.Template, error)

	// Kinds lists the available template kinds in sorted order.
	Kinds(ctx context.Context) ([]string, error)
}

// TemplateWriter persists custom templates.
type TemplateWriter interface {
	// SaveTemplate creates or replaces a template.
	SaveTemplate(ctx context.Context, t *domain.Template) error
}
