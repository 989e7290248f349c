// Copyright 2024-present the taskqueue authors. All rights reserved.
// Use of this source code is governed by a MIT-license.
// See LICENSE.txt for details.

package taskqueue

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultMaxRetries = 3
)

// Queue is a concurrency-safe priority queue that orders tasks by urgency,
// tracks their lifecycle, and retries failed tasks until their retry
// ceiling is reached. Create a new queue via New.
type Queue struct {
	logger Logger
	now    func() time.Time

	mu         sync.Mutex // guards the following block
	heap       *taskHeap
	store      *taskStore
	stats      Stats
	maxRetries int // default retry ceiling for tasks that do not set one
}

// New creates a new queue. Pass options to configure it.
func New(options ...Option) *Queue {
	q := &Queue{
		logger:     stdLogger{},
		now:        time.Now,
		heap:       &taskHeap{},
		store:      newTaskStore(),
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range options {
		opt(q)
	}
	return q
}

// -- Configuration --

// Option is the signature of an options provider.
type Option func(*Queue)

// SetLogger specifies the logger to use when e.g. reporting anomalies.
func SetLogger(logger Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// SetDefaultMaxRetries sets the retry ceiling applied to tasks enqueued
// without one. It must be greater or equal to 0 and is 3 by default.
func SetDefaultMaxRetries(n int) Option {
	return func(q *Queue) {
		if n < 0 {
			n = 0
		}
		q.maxRetries = n
	}
}

// SetNowFunc specifies the time source. Tests use this to control
// enqueue and completion timestamps.
func SetNowFunc(fn func() time.Time) Option {
	return func(q *Queue) {
		if fn != nil {
			q.now = fn
		}
	}
}

// -- Enqueue, Dequeue, Complete --

// Enqueue adds a task to the queue. The caller sets ID, CorrelationID,
// Priority, and optionally MaxRetries and EnqueuedAt; everything else is
// owned by the queue. If ID is empty, an identifier is assigned and
// written back to the passed task.
//
// Enqueue fails with ErrInvalidPriority on an unknown priority class and
// with ErrDuplicateID if a task with the same id is pending or processing.
// The queue itself is unbounded, so Enqueue never fails on capacity.
func (q *Queue) Enqueue(task *Task) error {
	if !task.Priority.Valid() {
		return ErrInvalidPriority
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if _, busy := q.store.processing[task.ID]; busy || q.heap.contains(task.ID) {
		return ErrDuplicateID
	}
	// A terminal record for the same id belongs to a previous enqueue
	// cycle; the new cycle supersedes it.
	q.store.dropTerminal(task.ID)

	task.State = Pending
	task.RetryCount = 0
	if task.MaxRetries <= 0 {
		task.MaxRetries = q.maxRetries
	}
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = q.now()
	}
	task.ProcessingStartedAt = time.Time{}
	task.ProcessingCompletedAt = time.Time{}
	task.LastError = ""

	q.heap.push(task.clone())
	q.logger.Printf("taskqueue: added task %s with priority %s", task.ID, task.Priority)
	return nil
}

// Dequeue pops the most urgent pending task, marks it processing, and
// returns a copy. It returns nil when no task is pending; it never
// blocks. Waiting for work is the caller's concern (see Pool).
func (q *Queue) Dequeue() *Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	task := q.heap.pop()
	if task == nil {
		return nil
	}
	task.State = Processing
	task.ProcessingStartedAt = q.now()
	q.store.processing[task.ID] = task
	return task.clone()
}

// Complete reports the outcome of a dequeued task. It returns false if id
// is not currently processing, e.g. on double completion or completion
// after a purge; that is a protocol anomaly, logged but benign.
//
// On success the task moves to the completed index and its processing
// time is folded into the statistics. On failure the task is re-inserted
// into the queue with its original enqueue time, unless its retry ceiling
// is reached, in which case it moves to the failed index.
func (q *Queue) Complete(id string, success bool, errMsg string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.store.takeProcessing(id)
	if !ok {
		q.logger.Printf("taskqueue: completion reported for unknown task %s", id)
		return false
	}

	if success {
		task.State = Completed
		task.ProcessingCompletedAt = q.now()
		q.store.completed[id] = task
		q.stats.recordCompleted(task.ProcessingCompletedAt.Sub(task.ProcessingStartedAt))
		return true
	}

	task.LastError = errMsg
	if task.RetryCount < task.MaxRetries {
		// Retrying is transient: the task re-enters the heap as
		// pending, competing on its original enqueue time.
		task.State = Retrying
		task.RetryCount++
		task.ProcessingStartedAt = time.Time{}
		task.ProcessingCompletedAt = time.Time{}
		q.stats.recordRetry()
		task.State = Pending
		q.heap.push(task)
		q.logger.Printf("taskqueue: task %s scheduled for retry (%d/%d)", id, task.RetryCount, task.MaxRetries)
		return true
	}

	task.State = Failed
	task.ProcessingCompletedAt = q.now()
	q.store.failed[id] = task
	q.stats.recordFailed()
	q.logger.Printf("taskqueue: task %s failed after %d retries: %s", id, task.RetryCount, errMsg)
	return true
}

// -- Reprioritize and Lookup --

// Reprioritize moves a pending task to another priority class by
// removing and re-inserting it under the lock. It returns false if the
// class is unknown or no pending task has the given id; tasks that are
// processing or terminal cannot be reprioritized.
func (q *Queue) Reprioritize(id string, p Priority) bool {
	if !p.Valid() {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	task := q.heap.remove(id)
	if task == nil {
		return false
	}
	task.Priority = p
	q.heap.push(task)
	return true
}

// Lookup returns a copy of the task with the given id, wherever it
// currently lives, or false if the queue has no record of it.
func (q *Queue) Lookup(id string) (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, m := range []map[string]*Task{q.store.processing, q.store.completed, q.store.failed} {
		if t, ok := m[id]; ok {
			return t.clone(), true
		}
	}
	for _, e := range q.heap.entries {
		if e.task.ID == id {
			return e.task.clone(), true
		}
	}
	return nil, false
}
