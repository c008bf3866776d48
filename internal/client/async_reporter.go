package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"microlearn/internal/domain"
	"microlearn/internal/logger"

	"go.uber.org/zap"
)

const defaultReportTimeout = 5 * time.Second

type progressWriter interface {
	RecordQuizResult(ctx context.Context, sessionID, quizID string, score float64) (*domain.Session, error)
	RecordFlashcardReview(ctx context.Context, sessionID, cardID string, correct bool) (*domain.Session, error)
}

// AsyncReporter sends study events in the background so the UI never blocks
// on the network. Failures are logged and counted, never returned.
type AsyncReporter struct {
	api      progressWriter
	timeout  time.Duration
	wg       sync.WaitGroup
	sent     atomic.Int64
	failures atomic.Int64
}

// NewAsyncReporter wraps api. A non-positive timeout uses the default.
func NewAsyncReporter(api progressWriter, timeout time.Duration) *AsyncReporter {
	if timeout <= 0 {
		timeout = defaultReportTimeout
	}
	return &AsyncReporter{api: api, timeout: timeout}
}

// ReportQuizResult dispatches a quiz score. ctx is only used for its values.
func (r *AsyncReporter) ReportQuizResult(ctx context.Context, sessionID, quizKey string, percent float64) error {
	r.dispatch(ctx, "quiz-complete", sessionID, func(ctx context.Context) error {
		_, err := r.api.RecordQuizResult(ctx, sessionID, quizKey, percent)
		return err
	})
	return nil
}

// ReportFlashcardReview dispatches a flashcard self-assessment.
func (r *AsyncReporter) ReportFlashcardReview(ctx context.Context, sessionID, cardKey string, known bool) error {
	r.dispatch(ctx, "flashcard-review", sessionID, func(ctx context.Context) error {
		_, err := r.api.RecordFlashcardReview(ctx, sessionID, cardKey, known)
		return err
	})
	return nil
}

func (r *AsyncReporter) dispatch(parent context.Context, op, sessionID string, call func(context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		// The caller's context ends with the keypress that produced the event.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), r.timeout)
		defer cancel()

		if err := call(ctx); err != nil {
			r.failures.Add(1)
			logger.Get().Warn("Progress report failed",
				zap.String("op", op),
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
			return
		}
		r.sent.Add(1)
	}()
}

// Wait blocks until every dispatched report has finished or ctx is done.
func (r *AsyncReporter) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sent returns the number of reports the API accepted.
func (r *AsyncReporter) Sent() int64 {
	return r.sent.Load()
}

// Failures returns the number of reports that could not be delivered.
func (r *AsyncReporter) Failures() int64 {
	return r.failures.Load()
}
