// Command e2e exercises the queue end to end: a producer enqueues tasks
// with random priorities, a worker pool processes them with a configurable
// failure rate, and the monitoring endpoints are served over HTTP.
package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/mailpipe/taskqueue"
	"github.com/mailpipe/taskqueue/monitor"
)

func main() {
	var (
		concurrency = flag.Int("c", 2, "number of workers")
		fillTime    = flag.Duration("fill-time", 5*time.Second, "interval in which new tasks get added")
		runTime     = flag.Duration("run-time", 2*time.Second, "maximum run time of a single task")
		logInterval = flag.Duration("log-interval", 1*time.Second, "log interval for stats")
		maxRetries  = flag.Int("max-retries", 3, "maximum number of retries per task")
		failureRate = flag.Float64("failure-rate", 0.05, "failure rate in the interval [0.0,1.0]")
		purgeAge    = flag.Duration("purge-age", time.Minute, "age at which finished tasks get purged")
		addr        = flag.String("addr", ":8997", "HTTP address for /status, /ws, and /metrics")
	)
	flag.Parse()

	rand.Seed(time.Now().UnixNano())

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	q := taskqueue.New(
		taskqueue.SetLogger(logger),
		taskqueue.SetDefaultMaxRetries(*maxRetries),
	)

	pool := taskqueue.NewPool(q, makeProcessor(*failureRate, *runTime),
		taskqueue.SetConcurrency(*concurrency),
		taskqueue.SetPoolLogger(logger),
	)
	if err := pool.Start(); err != nil {
		logger.Fatal(err)
	}

	// Monitoring surface
	prometheus.MustRegister(taskqueue.NewCollector(q))
	mux := http.NewServeMux()
	mux.Handle("/", monitor.New(q).Handler())
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(*addr, mux); err != nil {
			logger.Fatal(err)
		}
	}()

	errc := make(chan error, 1)

	// Enqueue tasks
	go func() {
		errc <- enqueuer(q, *fillTime)
	}()

	// Print stats and purge old history
	go watcher(q, logger, *logInterval, *purgeAge)

	// Wait for e.g. Ctrl+C
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGTERM, syscall.SIGINT)
		logger.Printf("signal %v", fmt.Sprint(<-c))
		errc <- pool.Stop()
	}()

	if err := <-errc; err != nil {
		logger.Fatal(err)
	}
	logger.Print("exiting")
}

var priorities = []taskqueue.Priority{
	taskqueue.Urgent,
	taskqueue.High,
	taskqueue.Normal,
	taskqueue.Low,
}

func enqueuer(q *taskqueue.Queue, fillTime time.Duration) error {
	var cnt int

	fillTimeNanos := fillTime.Nanoseconds()
	for {
		time.Sleep(time.Duration(rand.Int63n(fillTimeNanos)) * time.Nanosecond)
		cnt++
		task := &taskqueue.Task{
			CorrelationID: fmt.Sprintf("#%05d", cnt),
			Priority:      priorities[rand.Intn(len(priorities))],
		}
		if err := q.Enqueue(task); err != nil {
			return err
		}
	}
}

func watcher(q *taskqueue.Queue, logger *logrus.Logger, d, purgeAge time.Duration) {
	t := time.NewTicker(d)
	defer t.Stop()

	for range t.C {
		snap := q.Status()
		logger.Printf("Pending=%6d Processing=%6d Completed=%6d Failed=%6d Retries=%6d Avg=%v",
			snap.QueueSize,
			snap.ProcessingCount,
			snap.CompletedCount,
			snap.FailedCount,
			snap.Stats.TotalRetries,
			snap.Stats.AvgProcessing,
		)
		q.PurgeOlderThan(purgeAge)
	}
}

func makeProcessor(failureRate float64, runTime time.Duration) taskqueue.Processor {
	runTimeNanos := runTime.Nanoseconds()
	return func(task *taskqueue.Task) error {
		time.Sleep(time.Duration(rand.Int63n(runTimeNanos)) * time.Nanosecond)
		if rand.Float64() < failureRate {
			return errors.New("processor failed")
		}
		return nil
	}
}
