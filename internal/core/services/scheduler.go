package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
	"github.com/custodia-labs/docsmith/internal/core/ports/driving"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// indexSyncer indexes approved documents missing from the index.
type indexSyncer interface {
	Sync(ctx context.Context) (domain.SyncResult, error)
}

// queueDrainer delivers queued index jobs.
type queueDrainer interface {
	Drain(ctx context.Context) (int, error)
}

// Scheduler runs the background index tasks on their intervals.
// Task state and run history live in the SchedulerStore so intervals
// survive restarts.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	syncer  indexSyncer
	drainer queueDrainer

	// tick is how often due tasks are checked.
	tick time.Duration

	mu       sync.Mutex
	running  bool
	inflight map[string]bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// historyLimit is how many results are kept per task.
const historyLimit = 100

// NewScheduler creates a scheduler. syncer and drainer may be nil, in
// which case their tasks run as no-ops.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	syncer indexSyncer,
	drainer queueDrainer,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		syncer:   syncer,
		drainer:  drainer,
		tick:     time.Minute,
		inflight: make(map[string]bool),
	}
}

// Start registers the configured tasks and runs the loop until ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stop := s.stopCh
	s.mu.Unlock()

	if err := s.registerTasks(ctx); err != nil {
		log.Printf("scheduler: failed to register tasks: %v", err)
	}

	s.runDue(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// Stop ends the loop and waits for in-flight tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// registerTasks writes every enabled task to the store. A changed interval
// reschedules the task from now.
func (s *Scheduler) registerTasks(ctx context.Context) error {
	tasks := []struct{ id, name string }{
		{domain.TaskIDIndexSync, "Index Sync"},
		{domain.TaskIDIndexQueue, "Index Queue"},
	}

	for _, t := range tasks {
		cfg := s.config.GetTaskConfig(t.id)
		if !cfg.Enabled {
			continue
		}

		task, err := s.store.GetTask(ctx, t.id)
		if err != nil {
			return err
		}
		switch {
		case task == nil:
			task = &domain.ScheduledTask{
				ID:       t.id,
				Name:     t.name,
				Interval: cfg.Interval,
				NextRun:  time.Now().Add(cfg.Interval),
			}
		case task.Interval != cfg.Interval:
			task.Interval = cfg.Interval
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = true

		if err := s.store.SaveTask(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

// runDue starts every enabled task whose next run has passed. A task that
// is still running from an earlier tick is not started again.
func (s *Scheduler) runDue(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		log.Printf("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := tasks[i]
		if !task.Enabled || task.NextRun.After(now) {
			continue
		}

		s.mu.Lock()
		busy := s.inflight[task.ID]
		if !busy {
			s.inflight[task.ID] = true
		}
		s.mu.Unlock()
		if busy {
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				s.mu.Lock()
				delete(s.inflight, task.ID)
				s.mu.Unlock()
			}()
			s.execute(ctx, &task)
		}()
	}
}

// execute runs one task and records its outcome.
func (s *Scheduler) execute(ctx context.Context, task *domain.ScheduledTask) {
	result := &domain.TaskResult{TaskID: task.ID, StartedAt: time.Now()}

	var err error
	switch task.ID {
	case domain.TaskIDIndexSync:
		result.ItemsProcessed, err = s.runIndexSync(ctx)
	case domain.TaskIDIndexQueue:
		result.ItemsProcessed, err = s.runIndexQueue(ctx)
	default:
		log.Printf("scheduler: unknown task ID: %s", task.ID)
		return
	}
	result.EndedAt = time.Now()

	task.LastRun = result.StartedAt
	task.NextRun = result.EndedAt.Add(task.Interval)
	if err != nil {
		result.Error = err.Error()
		task.LastError = err.Error()
		log.Printf("scheduler: task %s failed: %v", task.ID, err)
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	}

	if err := s.store.SaveTask(ctx, task); err != nil {
		log.Printf("scheduler: failed to save task %s: %v", task.ID, err)
	}
	if err := s.store.RecordResult(ctx, result); err != nil {
		log.Printf("scheduler: failed to record result for %s: %v", task.ID, err)
	}
	if err := s.store.PruneHistory(ctx, historyLimit); err != nil {
		log.Printf("scheduler: failed to prune history: %v", err)
	}
}

// runIndexSync indexes approved documents missing from the index.
func (s *Scheduler) runIndexSync(ctx context.Context) (int, error) {
	if s.syncer == nil {
		return 0, nil
	}
	res, err := s.syncer.Sync(ctx)
	return res.NewlyIndexed, err
}

// runIndexQueue drains pending index jobs.
func (s *Scheduler) runIndexQueue(ctx context.Context) (int, error) {
	if s.drainer == nil {
		return 0, nil
	}
	return s.drainer.Drain(ctx)
}
