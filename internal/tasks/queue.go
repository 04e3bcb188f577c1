package tasks

import "sync"

// Sink receives progress updates from a running pipeline.
type Sink interface {
	Put(update ProgressUpdate)
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(ProgressUpdate)

func (f SinkFunc) Put(update ProgressUpdate) { f(update) }

// Queue is an unbounded FIFO of progress updates shared between one worker and the UI pump.
//
// Put never blocks and never drops; TryGet never blocks.
type Queue struct {
	mu    sync.Mutex
	items []ProgressUpdate
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Put appends an update to the tail of the queue.
func (q *Queue) Put(update ProgressUpdate) {
	q.mu.Lock()
	q.items = append(q.items, update)
	q.mu.Unlock()
}

// TryGet removes and returns the head of the queue. ok is false when the queue is empty.
func (q *Queue) TryGet() (update ProgressUpdate, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return ProgressUpdate{}, false
	}
	update = q.items[0]
	q.items[0] = ProgressUpdate{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return update, true
}

// Len returns the number of queued updates.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
