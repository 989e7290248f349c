package taskqueue

import (
	"errors"
	"testing"
	"time"
)

func TestPoolDefaults(t *testing.T) {
	q := New()
	p := NewPool(q, func(*Task) error { return nil })
	if have, want := p.concurrency, defaultConcurrency; have != want {
		t.Fatalf("concurrency = %v, want %v", have, want)
	}
	if have, want := p.started, false; have != want {
		t.Fatalf("started = %t, want %t", have, want)
	}
}

func TestPoolStartStop(t *testing.T) {
	q := New()
	p := NewPool(q, func(*Task) error { return nil }, SetConcurrency(2))

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed with %v", err)
	}
	if err := p.Start(); err == nil {
		t.Fatal("expected second Start to fail")
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed with %v", err)
	}
	// Stopping twice is harmless.
	if err := p.Stop(); err != nil {
		t.Fatalf("second Stop failed with %v", err)
	}
}

// TestPoolSuccess is the green case where a task is enqueued and
// processed without problems.
func TestPoolSuccess(t *testing.T) {
	taskDone := make(chan string, 1)
	processed := make(chan struct{}, 1)

	q := New()
	p := NewPool(q, func(task *Task) error {
		taskDone <- task.CorrelationID
		return nil
	}, SetConcurrency(1))
	p.testTaskProcessed = func() { processed <- struct{}{} }

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed with %v", err)
	}
	defer p.Stop()

	task := &Task{ID: "a", CorrelationID: "msg-1", Priority: Urgent}
	if err := q.Enqueue(task); err != nil {
		t.Fatalf("Enqueue failed with %v", err)
	}

	timeout := 2 * time.Second
	select {
	case cid := <-taskDone:
		if have, want := cid, "msg-1"; have != want {
			t.Fatalf("CorrelationID = %q, want %q", have, want)
		}
	case <-time.After(timeout):
		t.Fatal("Processor func timed out")
	}
	select {
	case <-processed:
	case <-time.After(timeout):
		t.Fatal("Completion timed out")
	}

	done, ok := q.Lookup("a")
	if !ok {
		t.Fatal("Lookup failed")
	}
	if have, want := done.State, Completed; have != want {
		t.Fatalf("State = %q, want %q", have, want)
	}
}

// TestPoolRetry schedules a task that fails on the 1st attempt but
// succeeds on the 2nd.
func TestPoolRetry(t *testing.T) {
	attempts := make(chan int, 2)
	failed := make(chan struct{}, 1)
	processed := make(chan struct{}, 2)

	l := &stringLogger{}
	q := New(SetLogger(discardLogger{}))
	var call int
	p := NewPool(q, func(task *Task) error {
		call++
		attempts <- call
		if call == 1 {
			return errors.New("failed on 1st call")
		}
		return nil
	}, SetConcurrency(1), SetPoolLogger(l))
	p.testTaskFailed = func() { failed <- struct{}{} }
	p.testTaskProcessed = func() { processed <- struct{}{} }

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed with %v", err)
	}
	defer p.Stop()

	if err := q.Enqueue(&Task{ID: "r", Priority: Normal, MaxRetries: 1}); err != nil {
		t.Fatalf("Enqueue failed with %v", err)
	}

	timeout := 2 * time.Second
	select {
	case <-attempts:
	case <-time.After(timeout):
		t.Fatal("1st attempt timed out")
	}
	select {
	case <-failed:
	case <-time.After(timeout):
		t.Fatal("failure report timed out")
	}
	select {
	case <-attempts:
	case <-time.After(timeout):
		t.Fatal("retry attempt timed out")
	}
	select {
	case <-processed:
	case <-time.After(timeout):
		t.Fatal("1st completion timed out")
	}
	select {
	case <-processed:
	case <-time.After(timeout):
		t.Fatal("2nd completion timed out")
	}

	done, ok := q.Lookup("r")
	if !ok {
		t.Fatal("Lookup failed")
	}
	if have, want := done.State, Completed; have != want {
		t.Fatalf("State = %q, want %q", have, want)
	}
	if have, want := done.RetryCount, 1; have != want {
		t.Fatalf("RetryCount = %d, want %d", have, want)
	}
	if len(l.Lines) == 0 {
		t.Fatal("expected lines written to Logger")
	}
}

// TestPoolExhaustion feeds a task that always fails and waits for it to
// land in the failed index.
func TestPoolExhaustion(t *testing.T) {
	failed := make(chan struct{}, 4)

	q := New(SetLogger(discardLogger{}))
	p := NewPool(q, func(task *Task) error {
		return errors.New("always failing")
	}, SetConcurrency(1), SetPoolLogger(discardLogger{}))
	p.testTaskFailed = func() { failed <- struct{}{} }

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed with %v", err)
	}
	defer p.Stop()

	if err := q.Enqueue(&Task{ID: "x", Priority: High, MaxRetries: 2}); err != nil {
		t.Fatalf("Enqueue failed with %v", err)
	}

	timeout := 2 * time.Second
	// initial attempt plus 2 retries
	for i := 0; i < 3; i++ {
		select {
		case <-failed:
		case <-time.After(timeout):
			t.Fatalf("attempt %d timed out", i+1)
		}
	}

	deadline := time.Now().Add(timeout)
	for {
		if list := q.ListFailed(0); len(list) == 1 {
			if have, want := list[0].RetryCount, 2; have != want {
				t.Fatalf("RetryCount = %d, want %d", have, want)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("task never landed in the failed index")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestPoolIdleBackoff checks that idle workers poll instead of spinning.
func TestPoolIdleBackoff(t *testing.T) {
	idle := make(chan struct{}, 16)

	q := New()
	p := NewPool(q, func(*Task) error { return nil }, SetConcurrency(1))
	p.testWorkerIdle = func() {
		select {
		case idle <- struct{}{}:
		default:
		}
	}

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed with %v", err)
	}
	defer p.Stop()

	select {
	case <-idle:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never polled an empty queue")
	}
}
