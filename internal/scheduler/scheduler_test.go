package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"ratesvc/internal/coordinator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingRefresher struct {
	calls  atomic.Int32
	maxAge atomic.Int64
	block  chan struct{}
}

func (r *countingRefresher) EnsureFresh(_ context.Context, _ string, maxAge time.Duration, force bool) (coordinator.Result, error) {
	r.calls.Add(1)
	r.maxAge.Store(int64(maxAge))
	if force {
		panic("scheduler must never force")
	}
	if r.block != nil {
		<-r.block
	}
	return coordinator.Result{Source: coordinator.SourceCache}, nil
}

// everySchedule fires at a sub-second period.
type everySchedule time.Duration

func (e everySchedule) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }

func startScheduler(t *testing.T, s *Scheduler) (cancel func(), done <-chan error) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(context.Background())
	ch := make(chan error, 1)
	go func() { ch <- s.Run(ctx) }()
	return cancelFn, ch
}

func TestScheduler_TimerTriggersChecks(t *testing.T) {
	r := &countingRefresher{}
	s := New(r, "USD", 30*time.Second, zap.NewNop().Sugar())
	s.schedule = everySchedule(20 * time.Millisecond)

	cancel, done := startScheduler(t, s)
	require.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(30*time.Second), r.maxAge.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestScheduler_ActivateTriggersCheck(t *testing.T) {
	r := &countingRefresher{}
	s := New(r, "USD", time.Hour, zap.NewNop().Sugar())

	cancel, done := startScheduler(t, s)
	defer func() {
		cancel()
		<-done
	}()

	s.Activate()
	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_SignalsCoalesceWhileChecking(t *testing.T) {
	r := &countingRefresher{block: make(chan struct{})}
	s := New(r, "USD", time.Hour, zap.NewNop().Sugar())

	cancel, done := startScheduler(t, s)
	s.Activate()
	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < 10; i++ {
		s.Activate()
	}
	r.block <- struct{}{}
	require.Eventually(t, func() bool { return r.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	r.block <- struct{}{}

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), r.calls.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestScheduler_NoChecksAfterTeardown(t *testing.T) {
	r := &countingRefresher{}
	s := New(r, "USD", time.Hour, zap.NewNop().Sugar())
	s.schedule = everySchedule(10 * time.Millisecond)

	cancel, done := startScheduler(t, s)
	require.Eventually(t, func() bool { return r.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	after := r.calls.Load()
	s.Activate()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, r.calls.Load())
}

func TestScheduler_DoneWaitsForRunningCheck(t *testing.T) {
	r := &countingRefresher{block: make(chan struct{})}
	s := New(r, "USD", time.Hour, zap.NewNop().Sugar())

	cancel, done := startScheduler(t, s)
	s.Activate()
	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-s.Done():
		t.Fatal("Done closed while a check was still running")
	case <-time.After(50 * time.Millisecond):
	}

	r.block <- struct{}{}
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after the check finished")
	}
	require.NoError(t, <-done)
}
