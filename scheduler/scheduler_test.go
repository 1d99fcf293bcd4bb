package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-ai/reasoncore/core"
	"github.com/nimbus-ai/reasoncore/dagtask"
)

func echoExec(ctx context.Context, t dagtask.Task) (string, error) {
	return "output:" + t.Name, nil
}

func TestRunExecutesIndependentTasksToSuccess(t *testing.T) {
	s := New(3)
	s.Add(dagtask.Task{Name: "a", Priority: dagtask.High, MaxRetries: 1})
	s.Add(dagtask.Task{Name: "b", Priority: dagtask.Low, MaxRetries: 1})

	results, err := s.Run(context.Background(), echoExec)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results["a"].Succeeded())
	assert.True(t, results["b"].Succeeded())
	assert.Equal(t, "output:a", results["a"].Output)
}

func TestRunSubstitutesUpstreamOutputIntoDownstreamPrompt(t *testing.T) {
	s := New(3)
	s.Add(dagtask.Task{Name: "up", Priority: dagtask.High, MaxRetries: 1})
	s.Add(dagtask.Task{Name: "down", Priority: dagtask.Medium, MaxRetries: 1,
		Dependencies: []string{"up"}, Prompt: "use {up} please"})

	var capturedPrompt string
	var mu sync.Mutex
	exec := func(ctx context.Context, task dagtask.Task) (string, error) {
		if task.Name == "down" {
			mu.Lock()
			capturedPrompt = task.Prompt
			mu.Unlock()
		}
		return "output:" + task.Name, nil
	}

	results, err := s.Run(context.Background(), exec)
	require.NoError(t, err)
	require.True(t, results["down"].Succeeded())
	assert.Equal(t, "use output:up please", capturedPrompt)
}

func TestRunSkipsTaskWhenDependencyFails(t *testing.T) {
	s := New(3)
	s.Add(dagtask.Task{Name: "up", Priority: dagtask.High, MaxRetries: 1})
	s.Add(dagtask.Task{Name: "down", Priority: dagtask.Medium, MaxRetries: 1, Dependencies: []string{"up"}})

	exec := func(ctx context.Context, task dagtask.Task) (string, error) {
		if task.Name == "up" {
			return "", errors.New("upstream broke")
		}
		return "output:" + task.Name, nil
	}

	results, err := s.Run(context.Background(), exec)
	require.NoError(t, err)
	assert.False(t, results["up"].Succeeded())
	assert.True(t, results["down"].Skipped)
	assert.ErrorContains(t, results["down"].Err, "dependency up failed")
}

func TestRunRejectsGraphWithMissingDependency(t *testing.T) {
	// A task depending on a name never Add()ed fails graph validation up
	// front rather than being marked unresolvable mid-run.
	s := New(3)
	s.Add(dagtask.Task{Name: "orphan", Dependencies: []string{"never_added"}})

	_, err := s.Run(context.Background(), echoExec)
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestRunRespectsPriorityOrderingWithinConcurrencyLimit(t *testing.T) {
	s := New(1) // force strictly serial execution
	var order []string
	var mu sync.Mutex

	s.Add(dagtask.Task{Name: "low", Priority: dagtask.Low, MaxRetries: 1})
	s.Add(dagtask.Task{Name: "critical", Priority: dagtask.Critical, MaxRetries: 1})
	s.Add(dagtask.Task{Name: "medium", Priority: dagtask.Medium, MaxRetries: 1})

	exec := func(ctx context.Context, task dagtask.Task) (string, error) {
		mu.Lock()
		order = append(order, task.Name)
		mu.Unlock()
		return "ok", nil
	}

	_, err := s.Run(context.Background(), exec)
	require.NoError(t, err)
	require.Len(t, order, 3)
	assert.Equal(t, "critical", order[0])
	assert.Equal(t, "medium", order[1])
	assert.Equal(t, "low", order[2])
}

func TestRunRetriesRetryableFailuresUpToMaxRetries(t *testing.T) {
	s := New(1, WithRetryBaseDelay(time.Millisecond))
	s.Add(dagtask.Task{Name: "flaky", MaxRetries: 3})

	var attempts int32
	exec := func(ctx context.Context, task dagtask.Task) (string, error) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return "", core.New("test", core.KindTimeout, task.Name, errors.New("timeout"))
		}
		return "recovered", nil
	}

	results, err := s.Run(context.Background(), exec)
	require.NoError(t, err)
	assert.True(t, results["flaky"].Succeeded())
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, 3, results["flaky"].Attempts)
}

func TestRunRetriesBackendFailuresUpToMaxRetries(t *testing.T) {
	// Scenario S2: a task failing with a non-retryable-by-kind error
	// (Backend) still retries up to retryCount<maxRetries and succeeds
	// on its third attempt. Kind gating belongs to the backend client
	// (C1), not the scheduler's per-task retry loop.
	s := New(1, WithRetryBaseDelay(time.Millisecond))
	s.Add(dagtask.Task{Name: "flaky", MaxRetries: 3})

	var attempts int32
	exec := func(ctx context.Context, task dagtask.Task) (string, error) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return "", core.New("test", core.KindBackend, task.Name, errors.New("backend error"))
		}
		return "recovered", nil
	}

	results, err := s.Run(context.Background(), exec)
	require.NoError(t, err)
	assert.True(t, results["flaky"].Succeeded())
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, 3, results["flaky"].Attempts)
}

func TestRunExhaustsAttemptsWhenFailureNeverRecovers(t *testing.T) {
	s := New(1, WithRetryBaseDelay(time.Millisecond))
	s.Add(dagtask.Task{Name: "bad", MaxRetries: 3})

	var attempts int32
	exec := func(ctx context.Context, task dagtask.Task) (string, error) {
		atomic.AddInt32(&attempts, 1)
		return "", core.New("test", core.KindValidation, task.Name, errors.New("bad input"))
	}

	results, err := s.Run(context.Background(), exec)
	require.NoError(t, err)
	assert.False(t, results["bad"].Succeeded())
	assert.Equal(t, int32(4), atomic.LoadInt32(&attempts))
}

func TestRunHonorsConcurrencyCap(t *testing.T) {
	s := New(2)
	var concurrent, maxConcurrent int32
	var mu sync.Mutex

	for i := 0; i < 6; i++ {
		s.Add(dagtask.Task{Name: "t" + string(rune('a'+i)), Priority: dagtask.Medium, MaxRetries: 1})
	}

	exec := func(ctx context.Context, task dagtask.Task) (string, error) {
		n := atomic.AddInt32(&concurrent, 1)
		mu.Lock()
		if n > maxConcurrent {
			maxConcurrent = n
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&concurrent, -1)
		return "ok", nil
	}

	_, err := s.Run(context.Background(), exec)
	require.NoError(t, err)
	assert.LessOrEqual(t, int(maxConcurrent), 2)
}
