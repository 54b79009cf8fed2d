package driving

import (
	"context"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

// Indexer keeps the external search index in step with documents.
type Indexer interface {
	// IndexDocument submits doc now. Existing documents are skipped unless force is set.
	IndexDocument(ctx context.Context, doc *domain.Document, force bool) (domain.IndexResult, error)

	// IndexAll indexes every document matching filter.
	IndexAll(ctx context.Context, filter domain.BulkFilter) (domain.BulkIndexResult, error)

	// Sync indexes approved documents missing from the index.
	Sync(ctx context.Context) (domain.SyncResult, error)
}
