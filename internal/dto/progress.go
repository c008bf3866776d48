package dto

import "microlearn/internal/domain"

// QuizCompleteRequest records a finished quiz.
// @Description Quiz completion, score in percent
type QuizCompleteRequest struct {
	SessionID string  `json:"session_id" form:"session_id"`
	QuizID    string  `json:"quiz_id" form:"quiz_id"`
	Score     float64 `json:"score" form:"score"`
}

// FlashcardReviewRequest records one flashcard self-assessment.
type FlashcardReviewRequest struct {
	SessionID string `json:"session_id" form:"session_id"`
	CardID    string `json:"card_id" form:"card_id"`
	Correct   bool   `json:"correct" form:"correct"`
}

// StudyTimeRequest adds study time to a session.
type StudyTimeRequest struct {
	SessionID string `json:"session_id" form:"session_id"`
	Seconds   int64  `json:"seconds" form:"seconds"`
}

// UpdateProgressRequest is the generic progress action. Data is a JSON object
// encoded as a string, as sent by form clients.
type UpdateProgressRequest struct {
	SessionID string `json:"session_id" form:"session_id"`
	Action    string `json:"action" form:"action"`
	Data      string `json:"data,omitempty" form:"data"`
}

// PreferencesRequest stores free-form learner preferences.
type PreferencesRequest struct {
	SessionID   string            `json:"session_id"`
	Preferences map[string]string `json:"preferences"`
}

// PreferencesResponse returns the stored preferences of a session.
type PreferencesResponse struct {
	SessionID   string            `json:"session_id"`
	Preferences map[string]string `json:"preferences"`
}

// ProgressUpdateResponse is returned by every progress mutation.
// @Description Mutation result with the updated session record
type ProgressUpdateResponse struct {
	Success  bool            `json:"success"`
	Progress *domain.Session `json:"progress"`
}

// ProgressResponse wraps a raw session record.
type ProgressResponse struct {
	Progress *domain.Session `json:"progress"`
}
