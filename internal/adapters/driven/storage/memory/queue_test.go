package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

func TestIndexQueue_FIFOAndMerge(t *testing.T) {
	ctx := context.Background()
	q := NewIndexQueue()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q.now = func() time.Time { return fixed }

	require.NoError(t, q.Enqueue(ctx, domain.IndexJob{DocumentID: "a"}))
	require.NoError(t, q.Enqueue(ctx, domain.IndexJob{DocumentID: "b"}))
	require.NoError(t, q.Enqueue(ctx, domain.IndexJob{DocumentID: "a", ForceUpdate: true, Attempts: 2}))
	require.NoError(t, q.Enqueue(ctx, domain.IndexJob{DocumentID: "a", Attempts: 1}))

	n, _ := q.Len(ctx)
	assert.Equal(t, 2, n)

	jobs, err := q.Dequeue(ctx, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].DocumentID)
	assert.True(t, jobs[0].ForceUpdate)
	assert.Equal(t, 2, jobs[0].Attempts)
	assert.NotEmpty(t, jobs[0].ID)
	assert.Equal(t, fixed, jobs[0].EnqueuedAt)
	assert.Equal(t, "b", jobs[1].DocumentID)
	assert.False(t, jobs[1].ForceUpdate)
}

func TestIndexQueue_ForcedMergeRestartsAttempts(t *testing.T) {
	ctx := context.Background()
	q := NewIndexQueue()

	require.NoError(t, q.Enqueue(ctx, domain.IndexJob{DocumentID: "a", Attempts: 2}))
	require.NoError(t, q.Enqueue(ctx, domain.IndexJob{DocumentID: "b", Attempts: 2}))
	require.NoError(t, q.Enqueue(ctx, domain.IndexJob{DocumentID: "a", ForceUpdate: true}))
	require.NoError(t, q.Enqueue(ctx, domain.IndexJob{DocumentID: "b"}))

	jobs, err := q.Dequeue(ctx, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.True(t, jobs[0].ForceUpdate)
	assert.Zero(t, jobs[0].Attempts)
	assert.False(t, jobs[1].ForceUpdate)
	assert.Equal(t, 2, jobs[1].Attempts)
}

func TestIndexQueue_DequeueLimit(t *testing.T) {
	ctx := context.Background()
	q := NewIndexQueue()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(ctx, domain.IndexJob{DocumentID: id}))
	}

	first, _ := q.Dequeue(ctx, 2)
	assert.Len(t, first, 2)

	// A dequeued document can be queued again, and merges still find the rest.
	require.NoError(t, q.Enqueue(ctx, domain.IndexJob{DocumentID: "a"}))
	require.NoError(t, q.Enqueue(ctx, domain.IndexJob{DocumentID: "c", ForceUpdate: true}))

	rest, _ := q.Dequeue(ctx, 10)
	require.Len(t, rest, 2)
	assert.Equal(t, "c", rest[0].DocumentID)
	assert.True(t, rest[0].ForceUpdate)
	assert.Equal(t, "a", rest[1].DocumentID)

	empty, err := q.Dequeue(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestIndexQueue_KeepsCallerIDs(t *testing.T) {
	ctx := context.Background()
	q := NewIndexQueue()
	at := time.Now().Add(-time.Hour)

	require.NoError(t, q.Enqueue(ctx, domain.IndexJob{ID: "job-1", DocumentID: "a", EnqueuedAt: at}))
	jobs, _ := q.Dequeue(ctx, 1)

	assert.Equal(t, "job-1", jobs[0].ID)
	assert.Equal(t, at, jobs[0].EnqueuedAt)

	assert.ErrorIs(t, q.Enqueue(ctx, domain.IndexJob{}), domain.ErrInvalidInput)
}
