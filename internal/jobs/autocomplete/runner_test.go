package autocomplete

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yovko123/uslugiBG-backend/internal/usecase/auto_complete"
)

type blockingSweeper struct {
	started chan struct{}
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (s *blockingSweeper) Execute(_ context.Context) (*auto_complete.Result, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	return &auto_complete.Result{Scanned: 3, Completed: 2, Failed: 1}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestTriggerNowReturnsSweepResult(t *testing.T) {
	sweeper := &blockingSweeper{}
	runner := NewRunner(sweeper, 3, nopLogger{})

	result, err := runner.TriggerNow(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.Scanned)
	assert.Equal(t, 2, result.Completed)
	assert.Equal(t, 1, result.Failed)
}

func TestTriggerNowRejectsConcurrentSweep(t *testing.T) {
	sweeper := &blockingSweeper{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	runner := NewRunner(sweeper, 3, nopLogger{})

	go runner.TriggerNow(context.Background()) //nolint:errcheck
	<-sweeper.started

	_, err := runner.TriggerNow(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(sweeper.release)
}

func TestNextRunSchedule(t *testing.T) {
	runner := NewRunner(&blockingSweeper{}, 3, nopLogger{})

	// До часа запуска - сегодня
	now := time.Date(2025, 6, 1, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC), runner.nextRun(now))

	// После часа запуска - завтра
	now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC), runner.nextRun(now))

	// Ровно в час запуска - завтра
	now = time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC), runner.nextRun(now))
}
