package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"nihith303/interview-ace/internal/interview"
)

func TestWorkerRunsQueuedJobs(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	wg.Add(3)

	w := NewWorker(JobRunnerFunc(func(_ context.Context, ticket interview.Ticket) error {
		mu.Lock()
		seen[ticket.SessionID] = true
		mu.Unlock()
		wg.Done()
		if ticket.SessionID == "s2" {
			return interview.ErrStaleResponse
		}
		return nil
	}), 2, 10, nil)
	w.Start(context.Background())
	defer w.Stop()

	for _, id := range []string{"s1", "s2", "s3"} {
		if !w.Enqueue(interview.Ticket{SessionID: id, Generation: 1, Stage: interview.StageGeneration}) {
			t.Fatalf("enqueue %s refused", id)
		}
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("jobs did not run")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 {
		t.Fatalf("ran %d jobs, want 3", len(seen))
	}
}

func TestWorkerRefusesAfterStop(t *testing.T) {
	w := NewWorker(JobRunnerFunc(func(context.Context, interview.Ticket) error { return nil }), 1, 1, nil)
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	if w.Enqueue(interview.Ticket{SessionID: "s1"}) {
		t.Fatalf("stopped worker accepted a job")
	}
}

func TestWorkerRefusesWhenQueueFull(t *testing.T) {
	running := make(chan struct{}, 1)
	release := make(chan struct{})
	w := NewWorker(JobRunnerFunc(func(context.Context, interview.Ticket) error {
		running <- struct{}{}
		<-release
		return nil
	}), 1, 1, nil)
	w.Start(context.Background())
	defer func() {
		close(release)
		w.Stop()
	}()

	if !w.Enqueue(interview.Ticket{SessionID: "s1"}) {
		t.Fatalf("first enqueue refused")
	}
	select {
	case <-running:
	case <-time.After(2 * time.Second):
		t.Fatalf("first job never started")
	}
	if !w.Enqueue(interview.Ticket{SessionID: "s2"}) {
		t.Fatalf("second enqueue should fill the queue")
	}

	refused := make(chan bool, 1)
	go func() { refused <- !w.Enqueue(interview.Ticket{SessionID: "s3"}) }()
	select {
	case ok := <-refused:
		if !ok {
			t.Fatalf("enqueue on a full queue should be refused")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("enqueue on a full queue blocked")
	}
}
