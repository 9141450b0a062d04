package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/ir"
)

// startLoop runs l on its own goroutine and returns a channel carrying
// Run's result.
func startLoop(t *testing.T, l *Loop) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
		return nil
	}
}

func TestLoop_SerializesConcurrentSubmits(t *testing.T) {
	e, _ := newMatch(t, ir.FormatT20)
	var notified atomic.Int32
	sink := SinkFunc(func(ctx context.Context, cmd ir.Command, s ir.MatchState) error {
		notified.Add(1)
		return nil
	})
	l := NewLoop(e, sink)
	_, done := startLoop(t, l)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Submit(context.Background(), ir.Command{Type: ir.CmdDelivery, Runs: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	l.Stop()
	require.NoError(t, waitDone(t, done))

	s := e.Snapshot()
	assert.Equal(t, 30, s.Score)
	assert.Equal(t, 30, s.Balls)
	assert.Equal(t, int32(30), notified.Load())
	assert.NoError(t, CheckFold(s))

	// Timestamps stay unique and increasing under concurrency.
	for i := 1; i < len(s.Events); i++ {
		assert.Greater(t, s.Events[i].Timestamp, s.Events[i-1].Timestamp)
	}
}

func TestLoop_RejectedCommandSkipsSinks(t *testing.T) {
	e, _ := newMatch(t, ir.FormatT20)
	var notified atomic.Int32
	l := NewLoop(e, SinkFunc(func(context.Context, ir.Command, ir.MatchState) error {
		notified.Add(1)
		return nil
	}))
	_, done := startLoop(t, l)

	_, err := l.Submit(context.Background(), ir.Command{Type: "teleport"})
	assert.True(t, IsCommandError(err))

	l.Stop()
	require.NoError(t, waitDone(t, done))
	assert.Zero(t, notified.Load())
}

func TestLoop_SinkErrorDoesNotFailCommand(t *testing.T) {
	e, _ := newMatch(t, ir.FormatT20)
	var second atomic.Int32
	l := NewLoop(e,
		SinkFunc(func(context.Context, ir.Command, ir.MatchState) error { return errors.New("disk full") }),
		SinkFunc(func(context.Context, ir.Command, ir.MatchState) error { second.Add(1); return nil }),
	)
	_, done := startLoop(t, l)

	s, err := l.Submit(context.Background(), ir.Command{Type: ir.CmdDelivery, Runs: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Score)
	assert.Equal(t, int32(1), second.Load(), "later sinks still run")

	l.Stop()
	require.NoError(t, waitDone(t, done))
}

func TestLoop_SubmitAfterStop(t *testing.T) {
	e, _ := newMatch(t, ir.FormatT20)
	l := NewLoop(e)
	_, done := startLoop(t, l)
	l.Stop()
	require.NoError(t, waitDone(t, done))

	_, err := l.Submit(context.Background(), ir.Command{Type: ir.CmdUndo})
	var ce *CommandError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrCodeLoopClosed, ce.Code)
}

func TestLoop_ContextCancel(t *testing.T) {
	e, _ := newMatch(t, ir.FormatT20)
	l := NewLoop(e)
	cancel, done := startLoop(t, l)

	cancel()
	assert.ErrorIs(t, waitDone(t, done), context.Canceled)
}

func TestLoop_SubmitHonoursCallerContext(t *testing.T) {
	e, _ := newMatch(t, ir.FormatT20)
	l := NewLoop(e) // never run

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := l.Submit(ctx, ir.Command{Type: ir.CmdUndo})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
