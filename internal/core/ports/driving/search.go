package driving

import (
	"context"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

// SearchService provides index-backed search and chat to external actors.
// All methods return neutral results when the index is disabled.
type SearchService interface {
	// Search runs a semantic query over indexed documents.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Chat asks a question grounded in indexed documents.
	Chat(ctx context.Context, messages []domain.ChatMessage, grounding map[string]any) (domain.ChatResult, error)

	// Suggestions asks the index for improvement ideas for content.
	Suggestions(ctx context.Context, content string, kind domain.DocumentKind) ([]string, error)

	// ValidateContent asks the index to review content for issues.
	ValidateContent(ctx context.Context, content string, kind domain.DocumentKind) (domain.ContentReview, error)

	// SimilarDocuments finds indexed documents resembling doc.
	SimilarDocuments(ctx context.Context, doc *domain.Document, limit int) ([]domain.SearchResult, error)

	// CrossReferences finds documents related to a stored document.
	CrossReferences(ctx context.Context, documentID string) ([]domain.CrossReference, error)
}
