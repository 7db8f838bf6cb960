package engine

import (
	"sync"

	"osintscan/pkg/logger"
)

// Queue bounds how many scans execute at once with a simple semaphore.
type Queue struct {
	semaphore chan struct{}
	running   int
	queued    int
	mu        sync.Mutex
	logger    *logger.Logger
}

// NewQueue creates a queue admitting at most maxConcurrent executions.
func NewQueue(maxConcurrent int, log *logger.Logger) *Queue {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	log.WithFields(logger.Fields{"max_concurrent": maxConcurrent}).Info("Scan queue initialized")

	return &Queue{
		semaphore: make(chan struct{}, maxConcurrent),
		logger:    log,
	}
}

// ExecuteWithQueue wraps a function execution with queue management
// It blocks until a slot is available, then executes the function
func (q *Queue) ExecuteWithQueue(fn func() error) error {
	q.mu.Lock()
	q.queued++
	currentQueued := q.queued
	currentRunning := q.running
	q.mu.Unlock()

	q.logger.WithFields(logger.Fields{
		"queued":  currentQueued,
		"running": currentRunning,
		"slots":   cap(q.semaphore),
	}).Debug("Scan added to queue")

	q.semaphore <- struct{}{}

	q.mu.Lock()
	q.queued--
	q.running++
	q.mu.Unlock()

	defer func() {
		<-q.semaphore
		q.mu.Lock()
		q.running--
		q.mu.Unlock()
	}()

	return fn()
}

// GetStatus returns current queue status
func (q *Queue) GetStatus() (running, queued, maxConcurrent int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running, q.queued, cap(q.semaphore)
}
