// Copyright 2024-present the taskqueue authors. All rights reserved.
// Use of this source code is governed by a MIT-license.
// See LICENSE.txt for details.

package taskqueue

import (
	"sort"
	"time"
)

// taskStore indexes tasks that left the heap: checked out to a worker,
// completed, or failed after retry exhaustion. A task id lives in at most
// one of the three maps at any instant.
//
// taskStore has no lock of its own. The queue's mutex spans every access,
// together with the heap, so that no caller can observe a task in two
// places.
type taskStore struct {
	processing map[string]*Task
	completed  map[string]*Task
	failed     map[string]*Task
}

func newTaskStore() *taskStore {
	return &taskStore{
		processing: make(map[string]*Task),
		completed:  make(map[string]*Task),
		failed:     make(map[string]*Task),
	}
}

// takeProcessing removes and returns the processing entry for id.
func (st *taskStore) takeProcessing(id string) (*Task, bool) {
	t, ok := st.processing[id]
	if ok {
		delete(st.processing, id)
	}
	return t, ok
}

// contains reports whether id is present in any of the three indexes.
func (st *taskStore) contains(id string) bool {
	if _, ok := st.processing[id]; ok {
		return true
	}
	if _, ok := st.completed[id]; ok {
		return true
	}
	_, ok := st.failed[id]
	return ok
}

// dropTerminal removes a completed or failed entry for id, making the
// identity available for a fresh enqueue cycle.
func (st *taskStore) dropTerminal(id string) {
	delete(st.completed, id)
	delete(st.failed, id)
}

// listProcessing returns copies of all checked-out tasks.
func (st *taskStore) listProcessing() []*Task {
	out := make([]*Task, 0, len(st.processing))
	for _, t := range st.processing {
		out = append(out, t.clone())
	}
	return out
}

// listFailed returns copies of up to limit failed tasks, most recently
// failed first.
func (st *taskStore) listFailed(limit int) []*Task {
	out := make([]*Task, 0, len(st.failed))
	for _, t := range st.failed {
		out = append(out, t.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProcessingCompletedAt.After(out[j].ProcessingCompletedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// purgeOlderThan deletes terminal entries completed before the cutoff and
// returns the number removed. Processing entries are never touched.
func (st *taskStore) purgeOlderThan(cutoff time.Time) int {
	var n int
	for id, t := range st.completed {
		if !t.ProcessingCompletedAt.IsZero() && t.ProcessingCompletedAt.Before(cutoff) {
			delete(st.completed, id)
			n++
		}
	}
	for id, t := range st.failed {
		if !t.ProcessingCompletedAt.IsZero() && t.ProcessingCompletedAt.Before(cutoff) {
			delete(st.failed, id)
			n++
		}
	}
	return n
}
