package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// mockFinder implements HoldFinder for testing
type mockFinder struct {
	ids []int64
	err error
}

func (m *mockFinder) FindExpiredIDs(_ context.Context, _ time.Time, _ time.Duration, _ int) ([]int64, error) {
	return m.ids, m.err
}

// mockExpirer implements HoldExpirer for testing
type mockExpirer struct {
	expired []int64
	failOn  map[int64]error
}

func (m *mockExpirer) ExpireHold(_ context.Context, id int64) error {
	if err, ok := m.failOn[id]; ok {
		return err
	}
	m.expired = append(m.expired, id)
	return nil
}

// countingMetrics implements Metrics for testing
type countingMetrics struct {
	expired int
	errors  map[string]int
}

func (m *countingMetrics) IncHoldsExpired(string) { m.expired++ }
func (m *countingMetrics) IncSweeperErrors(stage string) {
	if m.errors == nil {
		m.errors = map[string]int{}
	}
	m.errors[stage]++
}

// nopLogger discards all log output
type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestSweeper(finder *mockFinder, expirer *mockExpirer, m Metrics) *Sweeper {
	return New(finder, expirer, time.Minute, 5*time.Minute, 100, m, nopLogger{})
}

func TestSweepOnce_ExpiresAllFound(t *testing.T) {
	finder := &mockFinder{ids: []int64{1, 2, 3}}
	expirer := &mockExpirer{}
	metrics := &countingMetrics{}

	n := newTestSweeper(finder, expirer, metrics).SweepOnce(context.Background())

	assert.Equal(t, 3, n)
	assert.Equal(t, []int64{1, 2, 3}, expirer.expired)
	assert.Equal(t, 3, metrics.expired)
}

func TestSweepOnce_NothingToDo(t *testing.T) {
	n := newTestSweeper(&mockFinder{}, &mockExpirer{}, nil).SweepOnce(context.Background())

	assert.Zero(t, n)
}

func TestSweepOnce_ErrorIsolation(t *testing.T) {
	// a failure on one hold must not stop the rest of the batch
	finder := &mockFinder{ids: []int64{1, 2, 3}}
	expirer := &mockExpirer{failOn: map[int64]error{2: errors.New("deadlock")}}
	metrics := &countingMetrics{}

	n := newTestSweeper(finder, expirer, metrics).SweepOnce(context.Background())

	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 3}, expirer.expired)
	assert.Equal(t, 1, metrics.errors["expire"])
}

func TestSweepOnce_FinderError(t *testing.T) {
	finder := &mockFinder{err: errors.New("connection refused")}
	metrics := &countingMetrics{}

	n := newTestSweeper(finder, &mockExpirer{}, metrics).SweepOnce(context.Background())

	assert.Zero(t, n)
	assert.Equal(t, 1, metrics.errors["find"])
}

func TestSweepOnce_StopsOnCancelledContext(t *testing.T) {
	finder := &mockFinder{ids: []int64{1, 2, 3}}
	expirer := &mockExpirer{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := newTestSweeper(finder, expirer, nil).SweepOnce(ctx)

	assert.Zero(t, n)
	assert.Empty(t, expirer.expired)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := New(&mockFinder{}, &mockExpirer{}, 10*time.Millisecond, time.Minute, 10, nil, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
