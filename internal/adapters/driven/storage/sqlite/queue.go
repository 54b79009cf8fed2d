package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
)

// indexQueue implements driven.IndexQueue on the index_jobs table.
// Jobs survive restarts; a job is removed as soon as it is dequeued.
type indexQueue struct {
	store *Store
	now   func() time.Time
}

var _ driven.IndexQueue = (*indexQueue)(nil)

// Enqueue inserts job or merges it into the waiting job for the same
// document, OR-ing ForceUpdate and keeping the higher attempt count. A
// merge that newly forces an update restarts the attempt count.
func (q *indexQueue) Enqueue(ctx context.Context, job domain.IndexJob) error {
	if job.DocumentID == "" {
		return domain.NewValidationError("document_id", "index job needs a document ID")
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = q.now()
	}

	_, err := q.store.db.ExecContext(ctx, `
		INSERT INTO index_jobs (id, document_id, force_update, attempts, enqueued_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			force_update = MAX(force_update, excluded.force_update),
			attempts = CASE
				WHEN excluded.force_update > force_update THEN excluded.attempts
				ELSE MAX(attempts, excluded.attempts)
			END
	`, job.ID, job.DocumentID, boolToInt(job.ForceUpdate), job.Attempts, formatTime(job.EnqueuedAt))
	if err != nil {
		return fmt.Errorf("enqueueing index job: %w", err)
	}
	return nil
}

// Dequeue removes and returns up to limit jobs, oldest first.
// A limit of zero or less takes everything.
func (q *indexQueue) Dequeue(ctx context.Context, limit int) ([]domain.IndexJob, error) {
	if limit <= 0 {
		limit = -1
	}

	jobs := []domain.IndexJob{}
	err := q.store.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT seq, id, document_id, force_update, attempts, enqueued_at
			FROM index_jobs ORDER BY seq LIMIT ?
		`, limit)
		if err != nil {
			return fmt.Errorf("querying index jobs: %w", err)
		}

		var seqs []int64
		for rows.Next() {
			var (
				seq        int64
				job        domain.IndexJob
				force      int
				enqueuedAt string
			)
			if err := rows.Scan(&seq, &job.ID, &job.DocumentID, &force, &job.Attempts, &enqueuedAt); err != nil {
				rows.Close()
				return fmt.Errorf("scanning index job: %w", err)
			}
			job.ForceUpdate = force == 1
			job.EnqueuedAt = parseTime(enqueuedAt)
			jobs = append(jobs, job)
			seqs = append(seqs, seq)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterating index jobs: %w", err)
		}
		rows.Close()

		for _, seq := range seqs {
			if _, err := tx.ExecContext(ctx, "DELETE FROM index_jobs WHERE seq = ?", seq); err != nil {
				return fmt.Errorf("removing index job: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// Len reports how many jobs are waiting.
func (q *indexQueue) Len(ctx context.Context) (int, error) {
	var n int
	if err := q.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM index_jobs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting index jobs: %w", err)
	}
	return n, nil
}
