// Copyright 2024-present the taskqueue authors. All rights reserved.
// Use of this source code is governed by a MIT-license.
// See LICENSE.txt for details.

package taskqueue

import (
	"testing"
	"time"

	"github.com/cenkalti/backoff"
)

func TestIdleBackoffNeverStops(t *testing.T) {
	b := newIdleBackoff()
	for i := 0; i < 100; i++ {
		d := b.NextBackOff()
		if d == backoff.Stop {
			t.Fatalf("NextBackOff returned Stop after %d polls", i)
		}
		if d > 2*time.Second {
			t.Fatalf("NextBackOff = %v, want <= 2s", d)
		}
	}
}

func TestIdleBackoffResets(t *testing.T) {
	b := newIdleBackoff()
	for i := 0; i < 20; i++ {
		b.NextBackOff()
	}
	b.Reset()
	// After a reset the next pause is in the initial neighborhood again
	// (randomization factor is 0.5 by default).
	if d := b.NextBackOff(); d > 100*time.Millisecond {
		t.Fatalf("NextBackOff after Reset = %v, want <= 100ms", d)
	}
}
