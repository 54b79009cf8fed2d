package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
)

// Index worker defaults.
const (
	DefaultIndexBatchSize   = 20
	DefaultIndexMaxAttempts = 3
)

// IndexWorker delivers queued index jobs. Delivery is at-least-once and
// safe to repeat: a job for an already indexed document without
// ForceUpdate is reported as exists.
type IndexWorker struct {
	queue       driven.IndexQueue
	docs        driven.DocumentStore
	indexer     *Indexer
	batchSize   int
	maxAttempts int
}

// NewIndexWorker creates a worker over queue.
func NewIndexWorker(queue driven.IndexQueue, docs driven.DocumentStore, indexer *Indexer) *IndexWorker {
	return &IndexWorker{
		queue:       queue,
		docs:        docs,
		indexer:     indexer,
		batchSize:   DefaultIndexBatchSize,
		maxAttempts: DefaultIndexMaxAttempts,
	}
}

// Drain processes jobs until the queue is empty and returns how many were
// delivered. Failed jobs are re-queued until they reach the attempt limit.
func (w *IndexWorker) Drain(ctx context.Context) (int, error) {
	if w.queue == nil {
		return 0, nil
	}

	delivered := 0
	for {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}

		jobs, err := w.queue.Dequeue(ctx, w.batchSize)
		if err != nil {
			return delivered, err
		}
		if len(jobs) == 0 {
			return delivered, nil
		}

		for _, job := range jobs {
			if w.process(ctx, job) {
				delivered++
			}
		}
	}
}

// process handles one job and reports whether it was delivered.
func (w *IndexWorker) process(ctx context.Context, job domain.IndexJob) bool {
	doc, err := w.docs.Get(ctx, job.DocumentID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Printf("index worker: dropping job for missing document %s", job.DocumentID)
		return false
	}

	if err == nil {
		var res domain.IndexResult
		res, err = w.indexer.IndexDocument(ctx, doc, job.ForceUpdate)
		if err == nil && res.Status != domain.IndexError {
			return true
		}
		if err == nil {
			err = errors.New(res.Message)
		}
	}

	job.Attempts++
	if job.Attempts >= w.maxAttempts {
		log.Printf("index worker: giving up on %s after %d attempts: %v", job.DocumentID, job.Attempts, err)
		return false
	}

	log.Printf("index worker: attempt %d for %s failed: %v", job.Attempts, job.DocumentID, err)
	if qErr := w.queue.Enqueue(ctx, job); qErr != nil {
		log.Printf("index worker: failed to requeue %s: %v", job.DocumentID, qErr)
	}
	return false
}

// Run drains the queue every interval until ctx is cancelled.
func (w *IndexWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.Drain(ctx); err != nil && ctx.Err() == nil {
			log.Printf("index worker: drain failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
