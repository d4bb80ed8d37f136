package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"nihith303/interview-ace/internal/interview"
)

// JobRunner executes the external call a ticket stands for and applies its
// result to the session.
type JobRunner interface {
	Run(ctx context.Context, ticket interview.Ticket) error
}

type Worker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(ticket interview.Ticket) bool
}

type worker struct {
	runner      JobRunner
	jobQueue    chan interview.Ticket
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
	logger      *slog.Logger
}

func NewWorker(runner JobRunner, concurrency, queueSize int, logger *slog.Logger) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &worker{
		runner:      runner,
		jobQueue:    make(chan interview.Ticket, queueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		logger:      logger,
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting worker", "concurrency", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements Worker. Jobs still queued are dropped; their sessions stay
// in their awaiting state and can be abandoned.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("stopping worker")
		close(w.stopChan)
	})
	w.wg.Wait()
	w.logger.Info("worker stopped")
}

// Enqueue implements Worker. It never blocks: it reports false when the
// worker is stopped or the queue is full.
func (w *worker) Enqueue(ticket interview.Ticket) bool {
	select {
	case <-w.stopChan:
		w.logger.Warn("worker stopped, cannot enqueue job", "session_id", ticket.SessionID, "stage", ticket.Stage)
		return false
	default:
	}

	select {
	case w.jobQueue <- ticket:
		w.logger.Debug("job enqueued", "session_id", ticket.SessionID, "stage", ticket.Stage, "generation", ticket.Generation)
		return true
	case <-w.stopChan:
		w.logger.Warn("worker stopped, cannot enqueue job", "session_id", ticket.SessionID, "stage", ticket.Stage)
		return false
	default:
		w.logger.Warn("job queue full, cannot enqueue job", "session_id", ticket.SessionID, "stage", ticket.Stage)
		return false
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case ticket := <-w.jobQueue:
			log := w.logger.With("worker", workerID, "session_id", ticket.SessionID, "stage", ticket.Stage)
			err := w.runner.Run(ctx, ticket)
			switch {
			case err == nil:
				log.Info("job completed")
			case errors.Is(err, interview.ErrStaleResponse):
				log.Info("job result discarded", "reason", err)
			default:
				log.Error("job failed", "error", err)
			}
		}
	}
}
