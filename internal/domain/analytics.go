package domain

import "time"

// Analytics is a read-only summary derived from a Session.
type Analytics struct {
	SessionID         string    `json:"session_id"`
	TotalQuizzes      int       `json:"total_quizzes"`
	AverageQuizScore  float64   `json:"average_quiz_score"`
	FlashcardReviews  int       `json:"total_flashcard_reviews"`
	CardsReviewed     int       `json:"cards_reviewed"`
	FlashcardAccuracy float64   `json:"flashcard_accuracy"`
	StudySeconds      int64     `json:"study_time_seconds"`
	CompletedModules  int       `json:"completed_modules"`
	StreakDays        int       `json:"streak_days"`
	LastActivity      time.Time `json:"last_activity"`
}
