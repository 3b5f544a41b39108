package worker

import "context"

// Queue is the buffered channel the watcher feeds ingest jobs into.
type Queue struct {
	Ch chan Job
}

func NewQueue(size int) *Queue {
	return &Queue{Ch: make(chan Job, size)}
}

// Push blocks while the queue is full. It returns false if ctx ends first.
func (q *Queue) Push(ctx context.Context, j Job) bool {
	select {
	case q.Ch <- j:
		return true
	case <-ctx.Done():
		return false
	}
}

func (q *Queue) Pop(ctx context.Context) (Job, bool) {
	select {
	case j := <-q.Ch:
		return j, true
	case <-ctx.Done():
		return Job{}, false
	}
}

func (q *Queue) Len() int {
	return len(q.Ch)
}
