// Copyright 2024-present the taskqueue authors. All rights reserved.
// Use of this source code is governed by a MIT-license.
// See LICENSE.txt for details.

package taskqueue

import "container/heap"

// orderBefore is the queue's ordering: by priority rank, then by the time
// of first insertion, oldest first. It deliberately does not look at any
// other Task field so that field reordering cannot change semantics.
func orderBefore(a, b *Task) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.EnqueuedAt.Before(b.EnqueuedAt)
}

// heapEntry pairs a task with the sequence number of its push. The
// sequence breaks ties between tasks of equal priority and enqueue time,
// keeping the order strict and deterministic.
type heapEntry struct {
	task *Task
	seq  uint64
}

// taskHeap implements heap.Interface. It is not safe for concurrent use;
// the queue's mutex guards every access.
type taskHeap struct {
	entries []heapEntry
	nextSeq uint64
}

func (h *taskHeap) Len() int { return len(h.entries) }

func (h *taskHeap) Less(i, j int) bool {
	a, b := h.entries[i], h.entries[j]
	if orderBefore(a.task, b.task) {
		return true
	}
	if orderBefore(b.task, a.task) {
		return false
	}
	return a.seq < b.seq
}

func (h *taskHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
}

func (h *taskHeap) Push(x interface{}) {
	h.entries = append(h.entries, x.(heapEntry))
}

func (h *taskHeap) Pop() interface{} {
	old := h.entries
	n := len(old)
	e := old[n-1]
	old[n-1] = heapEntry{} // release the task pointer
	h.entries = old[:n-1]
	return e
}

// push inserts a task and assigns its sequence number.
func (h *taskHeap) push(t *Task) {
	h.nextSeq++
	heap.Push(h, heapEntry{task: t, seq: h.nextSeq})
}

// pop removes and returns the task that sorts first, or nil if empty.
func (h *taskHeap) pop() *Task {
	if len(h.entries) == 0 {
		return nil
	}
	return heap.Pop(h).(heapEntry).task
}

// remove deletes the task with the given id, wherever it sits in the
// heap, and returns it. Used by Reprioritize.
func (h *taskHeap) remove(id string) *Task {
	for i, e := range h.entries {
		if e.task.ID == id {
			return heap.Remove(h, i).(heapEntry).task
		}
	}
	return nil
}

// contains reports whether a task with the given id is pending.
func (h *taskHeap) contains(id string) bool {
	for _, e := range h.entries {
		if e.task.ID == id {
			return true
		}
	}
	return false
}

// peekSorted returns up to n tasks in dequeue order without mutating the
// heap. It sorts a copy of the backing slice, which is fine for the small
// n used by status previews.
func (h *taskHeap) peekSorted(n int) []*Task {
	if n > len(h.entries) {
		n = len(h.entries)
	}
	if n == 0 {
		return nil
	}
	cp := &taskHeap{entries: append([]heapEntry(nil), h.entries...)}
	out := make([]*Task, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, heap.Pop(cp).(heapEntry).task)
	}
	return out
}
