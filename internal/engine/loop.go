package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/crease/internal/ir"
)

// Sink receives a read snapshot after every command. Persistence and
// spectator mirroring are sinks. A sink error is logged and never retried;
// the command has already taken effect.
type Sink interface {
	Notify(ctx context.Context, cmd ir.Command, state ir.MatchState) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, cmd ir.Command, state ir.MatchState) error

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, cmd ir.Command, state ir.MatchState) error {
	return f(ctx, cmd, state)
}

// Loop serializes commands from concurrent sources onto one Engine.
//
// Submit is safe from any goroutine; Run must be called from exactly one.
// All engine mutation and sink notification happen on the Run goroutine,
// so the engine keeps its single-writer guarantee.
type Loop struct {
	engine *Engine
	queue  *commandQueue
	sinks  []Sink
}

// NewLoop wraps e. Sinks are notified in the given order.
func NewLoop(e *Engine, sinks ...Sink) *Loop {
	return &Loop{
		engine: e,
		queue:  newCommandQueue(),
		sinks:  sinks,
	}
}

// Submit enqueues cmd and waits for its result. It returns a CommandError
// with ErrCodeLoopClosed if the loop has stopped.
func (l *Loop) Submit(ctx context.Context, cmd ir.Command) (ir.MatchState, error) {
	r := request{cmd: cmd, reply: make(chan reply, 1)}
	if !l.queue.Enqueue(r) {
		return ir.MatchState{}, &CommandError{Code: ErrCodeLoopClosed, Type: string(cmd.Type), Message: "command loop is stopped"}
	}
	select {
	case <-ctx.Done():
		return ir.MatchState{}, ctx.Err()
	case res := <-r.reply:
		return res.state, res.err
	}
}

// Run processes commands until ctx is cancelled or Stop is called.
//
// A command that fails validation is answered with its error and does not
// reach the sinks.
func (l *Loop) Run(ctx context.Context) error {
	slog.Info("command loop starting", "match_id", l.engine.state.MatchID)

	for {
		if r, ok := l.queue.TryDequeue(); ok {
			l.process(ctx, r)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("command loop stopping: context cancelled")
			l.queue.Close()
			l.drain(ctx.Err())
			return ctx.Err()

		case <-l.queue.Wait():
			// The signal channel closes with the queue, so this case keeps
			// firing until the remaining requests are gone.
			if l.queue.Len() == 0 && l.closed() {
				slog.Info("command loop stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue; Run returns once pending commands are processed.
func (l *Loop) Stop() {
	l.queue.Close()
}

func (l *Loop) closed() bool {
	l.queue.mu.Lock()
	defer l.queue.mu.Unlock()
	return l.queue.closed
}

func (l *Loop) process(ctx context.Context, r request) {
	state, err := l.engine.Execute(r.cmd)
	r.reply <- reply{state: state, err: err}
	if err != nil {
		slog.Warn("command rejected", "match_id", state.MatchID, "type", r.cmd.Type, "error", err)
		return
	}
	for _, s := range l.sinks {
		if err := s.Notify(ctx, r.cmd, state); err != nil {
			slog.Error("sink failed",
				"match_id", state.MatchID,
				"type", r.cmd.Type,
				"error", err,
			)
		}
	}
}

// drain answers every queued request with err.
func (l *Loop) drain(err error) {
	for {
		r, ok := l.queue.TryDequeue()
		if !ok {
			return
		}
		r.reply <- reply{err: err}
	}
}
