// Copyright 2024-present the taskqueue authors. All rights reserved.
// Use of this source code is governed by a MIT-license.
// See LICENSE.txt for details.

package taskqueue

import (
	"testing"
	"time"
)

func TestStatsIncrementalAverage(t *testing.T) {
	tests := []struct {
		Sample   time.Duration
		Expected time.Duration
	}{
		{100 * time.Millisecond, 100 * time.Millisecond},
		{200 * time.Millisecond, 150 * time.Millisecond},
		{600 * time.Millisecond, 300 * time.Millisecond},
		{300 * time.Millisecond, 300 * time.Millisecond},
	}

	var s Stats
	for i, test := range tests {
		s.recordCompleted(test.Sample)
		if want, have := test.Expected, s.AvgProcessing; want != have {
			t.Fatalf("#%d: AvgProcessing = %v, want %v", i, have, want)
		}
		if want, have := i+1, s.TotalCompleted; want != have {
			t.Fatalf("#%d: TotalCompleted = %v, want %v", i, have, want)
		}
	}
}

func TestStatsFailuresDoNotMoveAverage(t *testing.T) {
	var s Stats
	s.recordCompleted(100 * time.Millisecond)
	s.recordFailed()
	s.recordRetry()
	if want, have := 100*time.Millisecond, s.AvgProcessing; want != have {
		t.Fatalf("AvgProcessing = %v, want %v", have, want)
	}
	if want, have := 1, s.TotalFailed; want != have {
		t.Fatalf("TotalFailed = %v, want %v", have, want)
	}
	if want, have := 1, s.TotalRetries; want != have {
		t.Fatalf("TotalRetries = %v, want %v", have, want)
	}
}
