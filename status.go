// Copyright 2024-present the taskqueue authors. All rights reserved.
// Use of this source code is governed by a MIT-license.
// See LICENSE.txt for details.

package taskqueue

import "time"

// statusPreviewSize is the number of upcoming tasks listed in a Snapshot.
const statusPreviewSize = 5

// TaskPreview summarizes one pending task in a Snapshot.
type TaskPreview struct {
	ID         string    `json:"id"`
	Priority   Priority  `json:"prio"`
	EnqueuedAt time.Time `json:"enqueued"`
	RetryCount int       `json:"retry"`
}

// Snapshot is a consistent view of the queue at one instant.
type Snapshot struct {
	QueueSize       int           `json:"queue_size"`
	ProcessingCount int           `json:"processing_count"`
	CompletedCount  int           `json:"completed_count"`
	FailedCount     int           `json:"failed_count"`
	Stats           Stats         `json:"stats"`
	Next            []TaskPreview `json:"next,omitempty"`
}

// Status returns current counts, statistics, and a preview of the tasks
// that would be dequeued next. It does not mutate the queue.
func (q *Queue) Status() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	snap := Snapshot{
		QueueSize:       q.heap.Len(),
		ProcessingCount: len(q.store.processing),
		CompletedCount:  len(q.store.completed),
		FailedCount:     len(q.store.failed),
		Stats:           q.stats,
	}
	for _, t := range q.heap.peekSorted(statusPreviewSize) {
		snap.Next = append(snap.Next, TaskPreview{
			ID:         t.ID,
			Priority:   t.Priority,
			EnqueuedAt: t.EnqueuedAt,
			RetryCount: t.RetryCount,
		})
	}
	return snap
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}

// ListProcessing returns copies of the tasks currently checked out to
// workers.
func (q *Queue) ListProcessing() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.listProcessing()
}

// ListFailed returns copies of up to limit tasks that exhausted their
// retries, most recently failed first. A limit of 0 returns all of them.
func (q *Queue) ListFailed(limit int) []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.listFailed(limit)
}

// PurgeOlderThan removes completed and failed tasks whose completion time
// is older than the given age and returns the number removed. Pending and
// processing tasks are never purged.
func (q *Queue) PurgeOlderThan(age time.Duration) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.store.purgeOlderThan(q.now().Add(-age))
	if n > 0 {
		q.logger.Printf("taskqueue: purged %d finished tasks", n)
	}
	return n
}

// PriorityDistribution counts pending tasks per priority class. Classes
// with no pending tasks are present with a zero count.
func (q *Queue) PriorityDistribution() map[Priority]int {
	q.mu.Lock()
	defer q.mu.Unlock()

	dist := map[Priority]int{Urgent: 0, High: 0, Normal: 0, Low: 0}
	for _, e := range q.heap.entries {
		dist[e.task.Priority]++
	}
	return dist
}
