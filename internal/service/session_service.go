package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"microlearn/internal/domain"
	"microlearn/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Progress actions accepted by UpdateProgress.
const (
	ActionModuleCompleted   = "module_completed"
	ActionQuizCompleted     = "quiz_completed"
	ActionFlashcardReviewed = "flashcard_reviewed"
	ActionStudyTime         = "study_time"

	defaultProgressKey = "default"
	maxPreferenceKeys  = 64
)

// SessionService owns learner progress records.
type SessionService interface {
	CreateSession(ctx context.Context) (*domain.Session, error)
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	RecordQuizResult(ctx context.Context, id, quizKey string, scorePercent float64) (*domain.Session, error)
	RecordFlashcardReview(ctx context.Context, id, cardKey string, wasCorrect bool) (*domain.Session, error)
	RecordStudyTime(ctx context.Context, id string, seconds int64) (*domain.Session, error)
	RecordModuleCompleted(ctx context.Context, id string) (*domain.Session, error)
	UpdateProgress(ctx context.Context, id, action string, data map[string]interface{}) (*domain.Session, error)
	SetPreferences(ctx context.Context, id string, prefs map[string]string) (map[string]string, error)
	GetPreferences(ctx context.Context, id string) (map[string]string, error)
}

type sessionService struct {
	store domain.SessionStore
	now   func() time.Time
	newID func() string
}

// NewSessionService creates a SessionService. A nil clock defaults to time.Now.
func NewSessionService(store domain.SessionStore, now func() time.Time) SessionService {
	if now == nil {
		now = time.Now
	}
	return &sessionService{store: store, now: now, newID: uuid.NewString}
}

func (s *sessionService) CreateSession(ctx context.Context) (*domain.Session, error) {
	session := domain.NewSession(s.newID(), s.now())
	if err := s.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logger.Get().Info("Session created", zap.String("session_id", session.ID))
	return session, nil
}

func (s *sessionService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("session_id is required")
	}
	return s.store.Get(ctx, id)
}

func (s *sessionService) RecordQuizResult(ctx context.Context, id, quizKey string, scorePercent float64) (*domain.Session, error) {
	if strings.TrimSpace(quizKey) == "" {
		return nil, domain.NewValidationError("quiz_id is required")
	}
	if math.IsNaN(scorePercent) || scorePercent < 0 || scorePercent > 100 {
		return nil, domain.NewValidationError("score must be between 0 and 100").
			WithContext("score", scorePercent)
	}
	return s.update(ctx, id, func(session *domain.Session) error {
		session.SetQuizScore(quizKey, scorePercent, s.now())
		return nil
	})
}

func (s *sessionService) RecordFlashcardReview(ctx context.Context, id, cardKey string, wasCorrect bool) (*domain.Session, error) {
	if strings.TrimSpace(cardKey) == "" {
		return nil, domain.NewValidationError("card_id is required")
	}
	return s.update(ctx, id, func(session *domain.Session) error {
		session.ReviewFlashcard(cardKey, wasCorrect, s.now())
		return nil
	})
}

func (s *sessionService) RecordStudyTime(ctx context.Context, id string, seconds int64) (*domain.Session, error) {
	if seconds < 0 {
		return nil, domain.NewValidationError("seconds must not be negative").WithContext("seconds", seconds)
	}
	return s.update(ctx, id, func(session *domain.Session) error {
		session.AddStudyTime(seconds, s.now())
		return nil
	})
}

func (s *sessionService) RecordModuleCompleted(ctx context.Context, id string) (*domain.Session, error) {
	return s.update(ctx, id, func(session *domain.Session) error {
		session.CompleteModule(s.now())
		return nil
	})
}

// UpdateProgress dispatches a generic progress action. Missing quiz or card
// ids fall back to "default".
func (s *sessionService) UpdateProgress(ctx context.Context, id, action string, data map[string]interface{}) (*domain.Session, error) {
	switch action {
	case ActionModuleCompleted:
		return s.RecordModuleCompleted(ctx, id)
	case ActionQuizCompleted:
		score, err := floatField(data, "score")
		if err != nil {
			return nil, err
		}
		return s.RecordQuizResult(ctx, id, stringField(data, "quiz_id", defaultProgressKey), score)
	case ActionFlashcardReviewed:
		correct, err := boolField(data, "correct")
		if err != nil {
			return nil, err
		}
		return s.RecordFlashcardReview(ctx, id, stringField(data, "card_id", defaultProgressKey), correct)
	case ActionStudyTime:
		seconds, err := floatField(data, "seconds")
		if err != nil {
			return nil, err
		}
		whole, err := wholeSeconds(seconds)
		if err != nil {
			return nil, err
		}
		return s.RecordStudyTime(ctx, id, whole)
	default:
		return nil, domain.NewValidationError(fmt.Sprintf("unknown progress action %q", action)).
			WithContext("action", action)
	}
}

func (s *sessionService) SetPreferences(ctx context.Context, id string, prefs map[string]string) (map[string]string, error) {
	if len(prefs) > maxPreferenceKeys {
		return nil, domain.NewOutOfRangeError("preferences", len(prefs), 0, maxPreferenceKeys)
	}
	session, err := s.update(ctx, id, func(session *domain.Session) error {
		if session.Preferences == nil {
			session.Preferences = make(map[string]string, len(prefs))
		}
		for k, v := range prefs {
			if strings.TrimSpace(k) == "" {
				return domain.NewValidationError("preference keys must not be empty")
			}
			session.Preferences[k] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session.Preferences, nil
}

func (s *sessionService) GetPreferences(ctx context.Context, id string) (map[string]string, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.Preferences, nil
}

func (s *sessionService) update(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("session_id is required")
	}
	session, err := s.store.Update(ctx, id, fn)
	if err != nil {
		if !domain.IsNotFound(err) && !domain.IsValidation(err) {
			logger.Get().Error("Session update failed", zap.String("session_id", id), zap.Error(err))
		}
		return nil, err
	}
	return session, nil
}

func stringField(data map[string]interface{}, key, fallback string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return fallback
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return fallback
	}
	return s
}

// wholeSeconds drops the fractional part of a non-negative duration.
func wholeSeconds(seconds float64) (int64, error) {
	switch {
	case math.IsNaN(seconds) || math.IsInf(seconds, 0):
		return 0, domain.NewValidationError("seconds must be a finite number").WithContext("field", "seconds")
	case seconds < 0:
		return 0, domain.NewValidationError("seconds must not be negative").WithContext("seconds", seconds)
	case seconds >= math.MaxInt64:
		// float64(math.MaxInt64) rounds up to 2^63, the first value that does not fit.
		return 0, domain.NewValidationError("seconds is too large").WithContext("seconds", seconds)
	}
	return int64(math.Floor(seconds)), nil
}

func floatField(data map[string]interface{}, key string) (float64, error) {
	switch v := data[key].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, domain.NewValidationError(fmt.Sprintf("%s must be a number", key))
		}
		return f, nil
	default:
		return 0, domain.NewValidationError(fmt.Sprintf("%s must be a number", key))
	}
}

func boolField(data map[string]interface{}, key string) (bool, error) {
	switch v := data[key].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, domain.NewValidationError(fmt.Sprintf("%s must be a boolean", key))
		}
		return b, nil
	default:
		return false, domain.NewValidationError(fmt.Sprintf("%s must be a boolean", key))
	}
}
