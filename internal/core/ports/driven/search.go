package driven

import (
	"context"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

// SearchIndex is the external semantic search and chat service.
// When Enabled is false every call returns a neutral disabled status
// instead of an error.
type SearchIndex interface {
	// Enabled reports whether credentials are configured.
	Enabled() bool

	// Index submits a document.
	Index(ctx context.Context, doc domain.IndexDocument) (domain.IndexResult, error)

	// Exists reports whether the external ID is already indexed.
	Exists(ctx context.Context, externalID string) (bool, error)

	// Search runs a semantic query.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Chat asks the index's chat capability, optionally grounded by extra context.
	Chat(ctx context.Context, messages []domain.ChatMessage, grounding map[string]any) (domain.ChatResult, error)
}
