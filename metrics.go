// Copyright 2024-present the taskqueue authors. All rights reserved.
// Use of this source code is governed by a MIT-license.
// See LICENSE.txt for details.

package taskqueue

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes queue counts and statistics as Prometheus metrics.
// It reads a consistent Snapshot on every scrape, so it holds no state of
// its own and a single queue can safely back multiple registries.
type Collector struct {
	q *Queue

	pendingDesc    *prometheus.Desc
	processingDesc *prometheus.Desc
	completedDesc  *prometheus.Desc
	failedDesc     *prometheus.Desc
	retriesDesc    *prometheus.Desc
	avgDesc        *prometheus.Desc
	byPriorityDesc *prometheus.Desc
}

// NewCollector creates a Collector for q. Register it with a
// prometheus.Registerer to expose the metrics.
func NewCollector(q *Queue) *Collector {
	return &Collector{
		q: q,
		pendingDesc: prometheus.NewDesc(
			"taskqueue_pending_tasks",
			"Number of tasks waiting in the queue.",
			nil, nil),
		processingDesc: prometheus.NewDesc(
			"taskqueue_processing_tasks",
			"Number of tasks currently checked out to workers.",
			nil, nil),
		completedDesc: prometheus.NewDesc(
			"taskqueue_completed_tasks_total",
			"Total number of tasks completed successfully.",
			nil, nil),
		failedDesc: prometheus.NewDesc(
			"taskqueue_failed_tasks_total",
			"Total number of tasks that exhausted their retries.",
			nil, nil),
		retriesDesc: prometheus.NewDesc(
			"taskqueue_retries_total",
			"Total number of retry re-insertions issued.",
			nil, nil),
		avgDesc: prometheus.NewDesc(
			"taskqueue_avg_processing_seconds",
			"Running average processing time of completed tasks.",
			nil, nil),
		byPriorityDesc: prometheus.NewDesc(
			"taskqueue_pending_tasks_by_priority",
			"Number of pending tasks per priority class.",
			[]string{"priority"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pendingDesc
	ch <- c.processingDesc
	ch <- c.completedDesc
	ch <- c.failedDesc
	ch <- c.retriesDesc
	ch <- c.avgDesc
	ch <- c.byPriorityDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.q.Status()
	ch <- prometheus.MustNewConstMetric(c.pendingDesc, prometheus.GaugeValue, float64(snap.QueueSize))
	ch <- prometheus.MustNewConstMetric(c.processingDesc, prometheus.GaugeValue, float64(snap.ProcessingCount))
	ch <- prometheus.MustNewConstMetric(c.completedDesc, prometheus.CounterValue, float64(snap.Stats.TotalCompleted))
	ch <- prometheus.MustNewConstMetric(c.failedDesc, prometheus.CounterValue, float64(snap.Stats.TotalFailed))
	ch <- prometheus.MustNewConstMetric(c.retriesDesc, prometheus.CounterValue, float64(snap.Stats.TotalRetries))
	ch <- prometheus.MustNewConstMetric(c.avgDesc, prometheus.GaugeValue, snap.Stats.AvgProcessing.Seconds())
	for p, n := range c.q.PriorityDistribution() {
		ch <- prometheus.MustNewConstMetric(c.byPriorityDesc, prometheus.GaugeValue, float64(n), p.String())
	}
}
