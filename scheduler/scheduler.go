// Package scheduler runs a set of dependent tasks to completion: it groups
// tasks that are ready to run by priority, executes each priority group
// with bounded concurrency, substitutes upstream output into downstream
// prompts, and retries failed tasks with backoff before giving up.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nimbus-ai/reasoncore/core"
	"github.com/nimbus-ai/reasoncore/dagtask"
)

// Exec runs a single task's prompt (with placeholders already substituted)
// against whatever backend the task names, and returns its raw output.
type Exec func(ctx context.Context, task dagtask.Task) (string, error)

// Scheduler holds a task graph and runs it once via Run.
type Scheduler struct {
	g                  *graph
	maxConcurrent      int
	retryBaseDelay     time.Duration
	logger             core.Logger
	metrics            core.MetricsRegistry
}

// New builds a Scheduler capping per-level concurrency at maxConcurrent
// (the scheduler never runs more than this many tasks at once, even
// across different priority groups within the same round).
func New(maxConcurrent int, opts ...Option) *Scheduler {
	if maxConcurrent < 1 {
		maxConcurrent = 5
	}
	s := &Scheduler{
		g:              newGraph(),
		maxConcurrent:  maxConcurrent,
		retryBaseDelay: 200 * time.Millisecond,
		logger:         core.NoOpLogger{},
		metrics:        core.NoOpMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

func WithLogger(l core.Logger) Option    { return func(s *Scheduler) { s.logger = l } }
func WithMetrics(m core.MetricsRegistry) Option { return func(s *Scheduler) { s.metrics = m } }
func WithRetryBaseDelay(d time.Duration) Option { return func(s *Scheduler) { s.retryBaseDelay = d } }

// Add registers a task. Order doesn't matter; dependencies are resolved
// by name at Run time.
func (s *Scheduler) Add(t dagtask.Task) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	s.g.add(t)
}

// Run executes every added task to completion (success, failure, or
// skip), using exec to perform the actual work. It returns one
// TaskResult per task. Per-task failure is represented by that task's
// Err field, not by Run's error; Run returns an error only for a
// malformed graph (e.g. a dependency naming a task that was never added).
func (s *Scheduler) Run(ctx context.Context, exec Exec) (map[string]dagtask.TaskResult, error) {
	if msg := s.g.validate(); msg != "" {
		return nil, core.New("scheduler.Run", core.KindValidation, "", errString(msg))
	}

	remaining := make(map[string]dagtask.Task, len(s.g.tasks))
	for name, t := range s.g.tasks {
		remaining[name] = t
	}

	done := make(map[string]dagtask.TaskResult, len(remaining))
	maxIterations := len(remaining)*2 + 1

	for iter := 0; iter < maxIterations && len(remaining) > 0; iter++ {
		ready := s.g.ready(remaining, done)
		if len(ready) == 0 {
			break
		}

		byPriority := map[dagtask.Priority][]dagtask.Task{}
		for _, t := range ready {
			byPriority[t.Priority] = append(byPriority[t.Priority], t)
		}

		for _, prio := range []dagtask.Priority{dagtask.Critical, dagtask.High, dagtask.Medium, dagtask.Low} {
			group := byPriority[prio]
			if len(group) == 0 {
				continue
			}
			sort.Slice(group, func(i, j int) bool {
				if group[i].Weight != group[j].Weight {
					return group[i].Weight > group[j].Weight
				}
				return group[i].CreatedAt.Before(group[j].CreatedAt)
			})
			s.runGroup(ctx, group, done, exec)
		}

		for _, t := range ready {
			delete(remaining, t.Name)
		}
	}

	if len(remaining) > 0 {
		s.logger.Warn("scheduler graph made no further progress", map[string]interface{}{
			"unresolved": len(remaining),
		})
		for name := range remaining {
			done[name] = dagtask.TaskResult{
				TaskName: name,
				Err:      core.New("scheduler.Run", core.KindUnresolvable, name, errString("no progress possible; unresolved dependency")),
				Skipped:  true,
			}
		}
	}

	return done, nil
}

func (s *Scheduler) runGroup(ctx context.Context, group []dagtask.Task, done map[string]dagtask.TaskResult, exec Exec) {
	concurrency := s.maxConcurrent
	if len(group) < concurrency {
		concurrency = len(group)
	}
	sem := make(chan struct{}, concurrency)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, t := range group {
		t := t
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			mu.Lock()
			depsSnapshot := make(map[string]dagtask.TaskResult, len(done))
			for k, v := range done {
				depsSnapshot[k] = v
			}
			mu.Unlock()

			result := s.runOne(ctx, t, depsSnapshot, exec)

			mu.Lock()
			done[t.Name] = result
			mu.Unlock()
		}()
	}

	wg.Wait()
}

func (s *Scheduler) runOne(ctx context.Context, t dagtask.Task, deps map[string]dagtask.TaskResult, exec Exec) dagtask.TaskResult {
	for _, dep := range t.Dependencies {
		if r, ok := deps[dep]; ok && !r.Succeeded() {
			return dagtask.TaskResult{
				TaskName: t.Name,
				Err:      core.New("scheduler.runOne", core.KindDependencyFailed, t.Name, errString("dependency "+dep+" failed")),
				Skipped:  true,
			}
		}
	}

	t.Prompt = substitutePlaceholders(t.Prompt, deps)

	maxAttempts := t.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	started := time.Now()
	var lastErr error
	var attempts int

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attempts = attempt
		taskCtx, cancel := context.WithTimeout(ctx, timeoutOrDefault(t.Timeout))
		out, err := exec(taskCtx, t)
		cancel()

		if err == nil {
			s.metrics.Counter("scheduler.task.success", "task", t.Name)
			return dagtask.TaskResult{
				TaskName:  t.Name,
				Output:    out,
				Attempts:  attempts,
				StartedAt: started,
				EndedAt:   time.Now(),
			}
		}

		lastErr = err
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			attempt = maxAttempts
		case <-time.After(time.Duration(attempt) * s.retryBaseDelay):
		}
	}

	s.metrics.Counter("scheduler.task.failure", "task", t.Name)
	return dagtask.TaskResult{
		TaskName:  t.Name,
		Err:       lastErr,
		Attempts:  attempts,
		StartedAt: started,
		EndedAt:   time.Now(),
	}
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}

type errString string

func (e errString) Error() string { return string(e) }
