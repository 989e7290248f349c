// Copyright 2024-present the taskqueue authors. All rights reserved.
// Use of this source code is governed by a MIT-license.
// See LICENSE.txt for details.

package taskqueue

import (
	"time"

	"github.com/cenkalti/backoff"
)

// newIdleBackoff returns the schedule a worker sleeps on between polls
// while the queue is empty. The schedule is reset whenever work arrives.
//
// MaxElapsedTime is zero so the schedule never returns backoff.Stop: an
// idle worker keeps polling until its pool is stopped.
func newIdleBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 1 * time.Second
	b.MaxElapsedTime = 0
	return b
}
