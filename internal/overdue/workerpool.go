package overdue

import (
	"context"

	"go.uber.org/zap"
)

type WorkerPoolI interface {
	AddTask(ctx context.Context, task Task) error
	Close()
}

// Task is one overdue check for a single loan.
type Task func() error

// WorkerPool bounds how many overdue checks run at once, so a large sweep
// can't open a database transaction per due loan simultaneously.
type WorkerPool struct {
	tasks   chan Task
	workers int
}

// NewWorkerPool starts workers goroutines draining a task queue of the same
// capacity.
func NewWorkerPool(workers int) *WorkerPool {
	wp := &WorkerPool{
		tasks:   make(chan Task, workers),
		workers: workers,
	}
	for i := 0; i < workers; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	for task := range wp.tasks {
		if err := task(); err != nil {
			zap.L().Error("overdue check failed", zap.Error(err))
		}
	}
}

// AddTask queues a check, blocking while all workers are busy and the queue
// is full. A cancelled context aborts the wait.
func (wp *WorkerPool) AddTask(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case wp.tasks <- task:
		return nil
	}
}

// Close stops the workers once the queue drains. Safe to call twice.
func (wp *WorkerPool) Close() {
	select {
	case <-wp.tasks:
	default:
		close(wp.tasks)
	}
}
