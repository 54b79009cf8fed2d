package driving

import (
	"context"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

// DocumentService manages stored product documents.
type DocumentService interface {
	// Create assigns an ID when missing, validates against the template and stores doc.
	Create(ctx context.Context, doc *domain.Document) (*domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// List returns documents matching filter.
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)

	// Update applies changes to a stored document and returns the result.
	Update(ctx context.Context, documentID string, changes domain.Changes) (*domain.Document, error)

	// Delete removes a document and its links.
	Delete(ctx context.Context, documentID string) error

	// Link links two documents in both directions.
	Link(ctx context.Context, a, b string) error

	// Unlink removes the link between two documents.
	Unlink(ctx context.Context, a, b string) error

	// Linked returns the documents linked to documentID.
	Linked(ctx context.Context, documentID string) ([]domain.Document, error)
}
