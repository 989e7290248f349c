// Copyright 2024-present the taskqueue authors. All rights reserved.
// Use of this source code is governed by a MIT-license.
// See LICENSE.txt for details.

package taskqueue

import (
	"errors"
	"time"
)

const (
	// Pending tasks are waiting in the queue to be dequeued.
	Pending string = "pending"
	// Processing tasks are checked out to a worker.
	Processing string = "processing"
	// Completed tasks finished successfully.
	Completed string = "completed"
	// Failed tasks exhausted their retries.
	Failed string = "failed"
	// Retrying is the transient state between a failed attempt and
	// re-insertion into the queue.
	Retrying string = "retrying"
)

// Priority is the urgency class of a task. Lower values are served first.
type Priority int

const (
	Urgent Priority = 1 + iota
	High
	Normal
	Low
)

var priorityNames = map[Priority]string{
	Urgent: "urgent",
	High:   "high",
	Normal: "normal",
	Low:    "low",
}

// String returns the lowercase name of the priority class.
func (p Priority) String() string {
	if s, ok := priorityNames[p]; ok {
		return s
	}
	return "unknown"
}

// Valid reports whether p is one of the four known classes.
func (p Priority) Valid() bool {
	_, ok := priorityNames[p]
	return ok
}

var (
	// ErrInvalidPriority is returned from Enqueue when the priority class
	// is not one of Urgent, High, Normal, or Low.
	ErrInvalidPriority = errors.New("taskqueue: invalid priority class")

	// ErrDuplicateID is returned from Enqueue when a task with the same
	// identifier is already pending or processing.
	ErrDuplicateID = errors.New("taskqueue: task id already active")
)

// Task is a unit of work with a priority and retry state.
//
// The zero values of ProcessingStartedAt, ProcessingCompletedAt, and
// LastError mean "not set".
type Task struct {
	ID                    string    `json:"id"`        // work item identifier; assigned by Enqueue if empty
	CorrelationID         string    `json:"cid"`       // external identifier, reporting only
	Priority              Priority  `json:"prio"`      // urgency class, lowest value served first
	State                 string    `json:"state"`     // current lifecycle state
	EnqueuedAt            time.Time `json:"enqueued"`  // time of first insertion; preserved across retries
	RetryCount            int       `json:"retry"`     // number of retries issued so far
	MaxRetries            int       `json:"maxretry"`  // retry ceiling; the queue default applies if zero
	ProcessingStartedAt   time.Time `json:"started"`   // time of the current Dequeue
	ProcessingCompletedAt time.Time `json:"completed"` // time the task reached a terminal state
	LastError             string    `json:"error"`     // last failure message reported via Complete
}

// clone returns a shallow copy so callers never share memory with the
// task held under the queue's lock.
func (t *Task) clone() *Task {
	c := *t
	return &c
}
