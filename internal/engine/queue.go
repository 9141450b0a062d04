package engine

import (
	"sync"

	"github.com/roach88/crease/internal/ir"
)

// reply is the outcome of one queued command.
type reply struct {
	state ir.MatchState
	err   error
}

// request pairs a command with the channel its result is delivered on.
type request struct {
	cmd   ir.Command
	reply chan reply // buffered, size 1
}

// commandQueue is an unbounded, thread-safe FIFO of pending requests.
//
// HTTP handlers enqueue from many goroutines while the Loop dequeues from
// one. The signal channel (buffered, size 1) coalesces wake-ups so the
// loop can select on it together with context cancellation.
type commandQueue struct {
	mu     sync.Mutex
	items  []request
	closed bool
	signal chan struct{}
}

func newCommandQueue() *commandQueue {
	return &commandQueue{
		items:  make([]request, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends r. Returns false if the queue is closed.
func (q *commandQueue) Enqueue(r request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, r)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front request without blocking.
func (q *commandQueue) TryDequeue() (request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return request{}, false
	}
	r := q.items[0]
	// Clear the slot so the backing array does not pin the reply channel.
	q.items[0] = request{}
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return r, true
}

// Wait returns a channel that signals when requests may be available. It
// is closed when the queue closes.
func (q *commandQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending requests.
func (q *commandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops further enqueues and wakes the loop. Pending requests are
// drained by the caller.
func (q *commandQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
