package driven

import (
	"context"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

// IndexQueue carries index jobs from request handlers to the index worker.
// Delivery is at-least-once; consumers must be idempotent.
type IndexQueue interface {
	// Enqueue adds a job. Jobs for a document already waiting are merged,
	// with ForceUpdate OR-ed together.
	Enqueue(ctx context.Context, job domain.IndexJob) error

	// Dequeue removes up to limit jobs for processing.
	// Returns an empty slice when nothing is waiting.
	Dequeue(ctx context.Context, limit int) ([]domain.IndexJob, error)

	// Len returns the number of waiting jobs.
	Len(ctx context.Context) (int, error)
}
