// Package taskqueue implements the dispatch core of an inbound-item
// processing pipeline: a concurrency-safe priority queue that orders
// tasks by urgency, tracks their lifecycle, and retries failed tasks
// before giving up.
//
// Applications using taskqueue first create a Queue. Producers add work
// via Enqueue; each task carries one of four priority classes (Urgent,
// High, Normal, Low). Workers obtain the most urgent task via Dequeue,
// perform the actual work, and report the outcome via Complete. Tasks of
// equal priority are served oldest first.
//
// A task is always in one of five states: pending (in the queue),
// processing (checked out to a worker), completed, failed, and retrying
// (the transient state between a failed attempt and re-insertion). When
// an attempt fails and the task has retries left, it is put back into the
// queue immediately, competing on its original enqueue time. Only once
// its retry ceiling is reached does a task end up failed; failed tasks
// remain available for inspection via ListFailed until purged with
// PurgeOlderThan.
//
// All queue operations are short, in-memory, and non-blocking; Dequeue
// returns nil rather than waiting for work. The Pool type implements the
// usual polling worker loop on top, with an exponential idle backoff. The
// monitor package streams queue snapshots over a websocket, and Collector
// exposes the same numbers to Prometheus.
//
// Queue state lives in memory only. Persistence across restarts,
// multi-node coordination, and producer backpressure are out of scope.
package taskqueue
