package taskqueue_test

import (
	"fmt"

	"github.com/mailpipe/taskqueue"
)

func ExampleQueue() {
	q := taskqueue.New()

	// Producers enqueue tasks with a priority class.
	for _, task := range []*taskqueue.Task{
		{ID: "newsletter", Priority: taskqueue.Low},
		{ID: "outage-report", Priority: taskqueue.Urgent},
		{ID: "invoice", Priority: taskqueue.Normal},
	} {
		if err := q.Enqueue(task); err != nil {
			fmt.Println("Enqueue failed")
			return
		}
	}

	// Workers take the most urgent task first and report the outcome.
	for {
		task := q.Dequeue()
		if task == nil {
			break
		}
		fmt.Printf("processing %s\n", task.ID)
		q.Complete(task.ID, true, "")
	}

	snap := q.Status()
	fmt.Printf("completed %d tasks\n", snap.CompletedCount)

	// Output:
	// processing outage-report
	// processing invoice
	// processing newsletter
	// completed 3 tasks
}
