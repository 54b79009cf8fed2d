package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

type stubSyncer struct {
	calls atomic.Int32
	err   error
}

func (s *stubSyncer) Sync(_ context.Context) (domain.SyncResult, error) {
	s.calls.Add(1)
	return domain.SyncResult{Checked: 4, NewlyIndexed: 2}, s.err
}

type stubDrainer struct {
	calls atomic.Int32
}

func (d *stubDrainer) Drain(_ context.Context) (int, error) {
	d.calls.Add(1)
	return 5, nil
}

func TestNewScheduler(t *testing.T) {
	s := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), nil, nil)

	require.NotNil(t, s)
	assert.Equal(t, time.Minute, s.tick)
}

func TestScheduler_DisabledReturnsImmediately(t *testing.T) {
	store := newMockSchedulerStore()
	s := NewScheduler(domain.SchedulerConfig{Enabled: false}, store, nil, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.Empty(t, store.tasks)
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	s := NewScheduler(domain.DefaultSchedulerConfig(), newMockSchedulerStore(), nil, nil)
	assert.NoError(t, s.Stop())
}

func TestScheduler_StartStop(t *testing.T) {
	store := newMockSchedulerStore()
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, &stubSyncer{}, &stubDrainer{})
	s.tick = 10 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		task, _ := store.GetTask(context.Background(), domain.TaskIDIndexQueue)
		return task != nil
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_RegisterTasks(t *testing.T) {
	ctx := context.Background()
	store := newMockSchedulerStore()
	cfg := domain.DefaultSchedulerConfig()
	cfg.TaskConfigs[domain.TaskIDIndexSync] = domain.TaskConfig{Enabled: false}
	s := NewScheduler(cfg, store, nil, nil)

	require.NoError(t, s.registerTasks(ctx))

	queueTask, _ := store.GetTask(ctx, domain.TaskIDIndexQueue)
	require.NotNil(t, queueTask)
	assert.True(t, queueTask.Enabled)
	assert.Equal(t, time.Minute, queueTask.Interval)
	assert.Equal(t, "Index Queue", queueTask.Name)

	syncTask, _ := store.GetTask(ctx, domain.TaskIDIndexSync)
	assert.Nil(t, syncTask)
}

func TestScheduler_RegisterTasks_IntervalChangeReschedules(t *testing.T) {
	ctx := context.Background()
	store := newMockSchedulerStore()
	far := time.Now().Add(24 * time.Hour)
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
		ID:       domain.TaskIDIndexSync,
		Name:     "Index Sync",
		Interval: 6 * time.Hour,
		NextRun:  far,
	}))
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, nil, nil)

	require.NoError(t, s.registerTasks(ctx))

	task, _ := store.GetTask(ctx, domain.TaskIDIndexSync)
	assert.Equal(t, time.Hour, task.Interval)
	assert.True(t, task.NextRun.Before(far))
}

func TestScheduler_RunDue(t *testing.T) {
	ctx := context.Background()
	store := newMockSchedulerStore()
	syncer := &stubSyncer{}
	drainer := &stubDrainer{}
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, syncer, drainer)

	past := time.Now().Add(-time.Minute)
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
		ID: domain.TaskIDIndexSync, Interval: time.Hour, NextRun: past, Enabled: true,
	}))
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
		ID: domain.TaskIDIndexQueue, Interval: time.Minute, NextRun: time.Now().Add(time.Hour), Enabled: true,
	}))

	s.runDue(ctx)
	s.wg.Wait()

	assert.Equal(t, int32(1), syncer.calls.Load())
	assert.Equal(t, int32(0), drainer.calls.Load())
	require.Equal(t, 1, store.resultCount(domain.TaskIDIndexSync))

	history, _ := store.GetTaskHistory(ctx, domain.TaskIDIndexSync, 10)
	assert.True(t, history[0].Success)
	assert.Equal(t, 2, history[0].ItemsProcessed)

	task, _ := store.GetTask(ctx, domain.TaskIDIndexSync)
	assert.True(t, task.NextRun.After(time.Now()))
	assert.False(t, task.LastSuccess.IsZero())
}

func TestScheduler_Execute_RecordsFailure(t *testing.T) {
	ctx := context.Background()
	store := newMockSchedulerStore()
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, &stubSyncer{err: errBoom}, nil)
	task := &domain.ScheduledTask{ID: domain.TaskIDIndexSync, Interval: time.Hour, Enabled: true}

	s.execute(ctx, task)

	history, _ := store.GetTaskHistory(ctx, domain.TaskIDIndexSync, 10)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
	assert.Equal(t, "boom", history[0].Error)
	assert.Equal(t, "boom", task.LastError)
}

func TestScheduler_Execute_NilRunners(t *testing.T) {
	ctx := context.Background()
	store := newMockSchedulerStore()
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, nil, nil)

	s.execute(ctx, &domain.ScheduledTask{ID: domain.TaskIDIndexQueue, Interval: time.Minute})

	history, _ := store.GetTaskHistory(ctx, domain.TaskIDIndexQueue, 10)
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.Zero(t, history[0].ItemsProcessed)
}

func TestScheduler_Execute_UnknownTask(t *testing.T) {
	store := newMockSchedulerStore()
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, nil, nil)

	s.execute(context.Background(), &domain.ScheduledTask{ID: "unknown"})

	assert.Zero(t, store.resultCount("unknown"))
}

func TestScheduler_RunDue_ListError(t *testing.T) {
	store := newMockSchedulerStore()
	store.listErr = errBoom
	syncer := &stubSyncer{}
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, syncer, nil)

	s.runDue(context.Background())
	s.wg.Wait()

	assert.Equal(t, int32(0), syncer.calls.Load())
}
