// Copyright 2024-present the taskqueue authors. All rights reserved.
// Use of this source code is governed by a MIT-license.
// See LICENSE.txt for details.

package taskqueue

import "time"

// Stats holds running counters about the queue.
type Stats struct {
	TotalCompleted int           `json:"completed"`  // tasks that finished successfully
	TotalFailed    int           `json:"failed"`     // tasks that exhausted their retries
	TotalRetries   int           `json:"retries"`    // retry re-insertions issued
	AvgProcessing  time.Duration `json:"avgelapsed"` // running average over completed tasks only
}

// recordCompleted folds one successful processing duration into the
// incremental average, so no history needs to be retained.
func (s *Stats) recordCompleted(elapsed time.Duration) {
	s.TotalCompleted++
	n := time.Duration(s.TotalCompleted)
	s.AvgProcessing = (s.AvgProcessing*(n-1) + elapsed) / n
}

func (s *Stats) recordRetry() {
	s.TotalRetries++
}

func (s *Stats) recordFailed() {
	s.TotalFailed++
}
