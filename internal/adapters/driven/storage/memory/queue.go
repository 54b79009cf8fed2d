package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
)

// Ensure IndexQueue implements the interface.
var _ driven.IndexQueue = (*IndexQueue)(nil)

// IndexQueue is a FIFO of index jobs with at most one waiting job per
// document. Jobs are lost when the process exits.
type IndexQueue struct {
	mu    sync.Mutex
	jobs  []domain.IndexJob
	byDoc map[string]int
	now   func() time.Time
}

// NewIndexQueue creates an empty queue.
func NewIndexQueue() *IndexQueue {
	return &IndexQueue{
		byDoc: make(map[string]int),
		now:   time.Now,
	}
}

// Enqueue adds job, or merges it into the job already waiting for the same
// document: ForceUpdate is OR-ed and the higher attempt count kept, unless
// the merge newly forces an update, which restarts the attempt count.
func (q *IndexQueue) Enqueue(_ context.Context, job domain.IndexJob) error {
	if job.DocumentID == "" {
		return domain.NewValidationError("document_id", "index job needs a document ID")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if i, ok := q.byDoc[job.DocumentID]; ok {
		waiting := &q.jobs[i]
		if job.ForceUpdate && !waiting.ForceUpdate {
			waiting.Attempts = job.Attempts
		} else {
			waiting.Attempts = max(waiting.Attempts, job.Attempts)
		}
		waiting.ForceUpdate = waiting.ForceUpdate || job.ForceUpdate
		return nil
	}

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = q.now()
	}
	q.byDoc[job.DocumentID] = len(q.jobs)
	q.jobs = append(q.jobs, job)
	return nil
}

// Dequeue removes up to limit jobs from the front. A limit of zero or
// less takes everything.
func (q *IndexQueue) Dequeue(_ context.Context, limit int) ([]domain.IndexJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if limit <= 0 || limit > len(q.jobs) {
		limit = len(q.jobs)
	}
	out := make([]domain.IndexJob, limit)
	copy(out, q.jobs[:limit])
	q.jobs = append(q.jobs[:0], q.jobs[limit:]...)

	clear(q.byDoc)
	for i, j := range q.jobs {
		q.byDoc[j.DocumentID] = i
	}
	return out, nil
}

// Len returns the number of waiting jobs.
func (q *IndexQueue) Len(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs), nil
}
