// Package learning holds the client-side study state: the quiz state machine
// and the flashcard navigator. Neither is safe for concurrent use; both are
// driven from a single UI loop.
package learning

import (
	"context"

	"microlearn/internal/logger"

	"go.uber.org/zap"
)

// ProgressReporter forwards study events to the session API. Errors are
// logged by the caller and never change local state.
type ProgressReporter interface {
	ReportQuizResult(ctx context.Context, sessionID, quizKey string, percent float64) error
	ReportFlashcardReview(ctx context.Context, sessionID, cardKey string, known bool) error
}

// NopReporter drops every event. Used for offline study.
type NopReporter struct{}

func (NopReporter) ReportQuizResult(context.Context, string, string, float64) error  { return nil }
func (NopReporter) ReportFlashcardReview(context.Context, string, string, bool) error { return nil }

func reportQuiz(ctx context.Context, r ProgressReporter, sessionID, quizKey string, percent float64) {
	if r == nil {
		return
	}
	if err := r.ReportQuizResult(ctx, sessionID, quizKey, percent); err != nil {
		logger.Get().Warn("Quiz result not reported",
			zap.String("session_id", sessionID), zap.String("quiz_id", quizKey), zap.Error(err))
	}
}

func reportFlashcard(ctx context.Context, r ProgressReporter, sessionID, cardKey string, known bool) {
	if r == nil {
		return
	}
	if err := r.ReportFlashcardReview(ctx, sessionID, cardKey, known); err != nil {
		logger.Get().Warn("Flashcard review not reported",
			zap.String("session_id", sessionID), zap.String("card_id", cardKey), zap.Error(err))
	}
}
