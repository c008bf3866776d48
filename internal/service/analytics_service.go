package service

import (
	"context"
	"time"

	"microlearn/internal/domain"
	"microlearn/internal/util"
)

// AnalyticsService derives learning analytics from stored sessions.
type AnalyticsService interface {
	GetAnalytics(ctx context.Context, sessionID string) (*domain.Analytics, error)
}

type analyticsService struct {
	sessions SessionService
	now      func() time.Time
}

func NewAnalyticsService(sessions SessionService, now func() time.Time) AnalyticsService {
	if now == nil {
		now = time.Now
	}
	return &analyticsService{sessions: sessions, now: now}
}

func (s *analyticsService) GetAnalytics(ctx context.Context, sessionID string) (*domain.Analytics, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	a := ComputeAnalytics(session, s.now())
	return &a, nil
}

// ComputeAnalytics is pure and defined for every session, including empty ones.
// The streak reads as 0 once a whole UTC day passed without activity.
func ComputeAnalytics(session *domain.Session, now time.Time) domain.Analytics {
	if session == nil {
		return domain.Analytics{}
	}

	a := domain.Analytics{
		SessionID:        session.ID,
		TotalQuizzes:     len(session.QuizScores),
		CardsReviewed:    len(session.Flashcards),
		StudySeconds:     session.StudySeconds,
		CompletedModules: session.CompletedModules,
		LastActivity:     session.LastActivity,
	}

	var scoreSum float64
	for _, score := range session.QuizScores {
		scoreSum += score
	}
	if a.TotalQuizzes > 0 {
		a.AverageQuizScore = scoreSum / float64(a.TotalQuizzes)
	}

	var correct int
	for _, rec := range session.Flashcards {
		correct += rec.CorrectCount
		a.FlashcardReviews += rec.Reviews()
	}
	a.FlashcardAccuracy = util.Ratio(correct, a.FlashcardReviews)

	if session.ActiveSince(now) {
		a.StreakDays = session.StreakDays
	}
	return a
}
