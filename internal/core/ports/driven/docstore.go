package driven

import (
	"context"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

// DocumentStore persists documents and the links between them.
// Concurrent writers to the same document are last-write-wins.
type DocumentStore interface {
	// Save creates or replaces a document, including its links.
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound if missing.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Delete removes a document and every link that touches it.
	Delete(ctx context.Context, id string) error

	// List returns documents matching filter, oldest first.
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)

	// Link records a symmetric link between two documents.
	Link(ctx context.Context, a, b string) error

	// Unlink removes the link between two documents.
	Unlink(ctx context.Context, a, b string) error

	// Linked returns the documents linked to id.
	Linked(ctx context.Context, id string) ([]domain.Document, error)
}
