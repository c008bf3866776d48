package domain

import (
	"context"
	"math"
	"time"
)

// dayLayout is the UTC calendar-day format used for streak tracking.
const dayLayout = "2006-01-02"

// FlashcardRecord holds the review history of a single card within a session.
type FlashcardRecord struct {
	CorrectCount   int       `json:"correct_count"`
	IncorrectCount int       `json:"incorrect_count"`
	LastReviewed   time.Time `json:"last_reviewed"`
}

// Reviews returns the total number of reviews recorded for the card.
func (r FlashcardRecord) Reviews() int {
	return r.CorrectCount + r.IncorrectCount
}

// Session is the memory-resident progress record of one learner.
type Session struct {
	ID               string                     `json:"session_id"`
	CreatedAt        time.Time                  `json:"created_at"`
	LastActivity     time.Time                  `json:"last_activity"`
	QuizScores       map[string]float64         `json:"quiz_scores"`
	Flashcards       map[string]FlashcardRecord `json:"flashcard_progress"`
	CompletedModules int                        `json:"completed_modules"`
	StudySeconds     int64                      `json:"study_seconds"`
	StreakDays       int                        `json:"streak_days"`
	LastActiveDay    string                     `json:"last_active_day,omitempty"`
	Preferences      map[string]string          `json:"preferences,omitempty"`
}

// NewSession creates a session with every counter zeroed.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActivity: now,
		QuizScores:   make(map[string]float64),
		Flashcards:   make(map[string]FlashcardRecord),
		Preferences:  make(map[string]string),
	}
}

// Clone returns a deep copy so callers never share maps with the store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.QuizScores = make(map[string]float64, len(s.QuizScores))
	for k, v := range s.QuizScores {
		c.QuizScores[k] = v
	}
	c.Flashcards = make(map[string]FlashcardRecord, len(s.Flashcards))
	for k, v := range s.Flashcards {
		c.Flashcards[k] = v
	}
	c.Preferences = make(map[string]string, len(s.Preferences))
	for k, v := range s.Preferences {
		c.Preferences[k] = v
	}
	return &c
}

// Touch records activity at now and advances the streak on UTC day boundaries.
func (s *Session) Touch(now time.Time) {
	s.LastActivity = now
	today := now.UTC().Format(dayLayout)
	switch {
	case s.LastActiveDay == today:
		if s.StreakDays == 0 {
			s.StreakDays = 1
		}
	case s.LastActiveDay != "" && s.LastActiveDay == now.UTC().AddDate(0, 0, -1).Format(dayLayout):
		s.StreakDays++
	default:
		s.StreakDays = 1
	}
	s.LastActiveDay = today
}

// SetQuizScore upserts the score for quizKey. Re-submissions overwrite.
func (s *Session) SetQuizScore(quizKey string, score float64, now time.Time) {
	if s.QuizScores == nil {
		s.QuizScores = make(map[string]float64)
	}
	s.QuizScores[quizKey] = score
	s.Touch(now)
}

// ReviewFlashcard bumps the correct or incorrect counter of cardKey.
func (s *Session) ReviewFlashcard(cardKey string, wasCorrect bool, now time.Time) {
	if s.Flashcards == nil {
		s.Flashcards = make(map[string]FlashcardRecord)
	}
	rec := s.Flashcards[cardKey]
	if wasCorrect {
		rec.CorrectCount++
	} else {
		rec.IncorrectCount++
	}
	rec.LastReviewed = now
	s.Flashcards[cardKey] = rec
	s.Touch(now)
}

// AddStudyTime accumulates study seconds, saturating at math.MaxInt64.
// Callers validate the sign.
func (s *Session) AddStudyTime(seconds int64, now time.Time) {
	if seconds > math.MaxInt64-s.StudySeconds {
		s.StudySeconds = math.MaxInt64
	} else {
		s.StudySeconds += seconds
	}
	s.Touch(now)
}

// CompleteModule increments the completed module counter.
func (s *Session) CompleteModule(now time.Time) {
	s.CompletedModules++
	s.Touch(now)
}

// ActiveSince reports whether the last active UTC day is today or yesterday.
func (s *Session) ActiveSince(now time.Time) bool {
	if s.LastActiveDay == "" {
		return false
	}
	today := now.UTC().Format(dayLayout)
	yesterday := now.UTC().AddDate(0, 0, -1).Format(dayLayout)
	return s.LastActiveDay == today || s.LastActiveDay == yesterday
}

// SessionStore persists sessions. Update must apply fn atomically with respect
// to other writers of the same session.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
}
