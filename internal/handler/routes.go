package handler

import (
	"microlearn/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Content  *ContentHandler
	Progress *ProgressHandler
	Health   *HealthHandler
}

// RegisterRoutes mounts the REST surface on router.
func RegisterRoutes(router fiber.Router, h Handlers) {
	vm := middleware.NewValidationMiddleware()

	router.Get("/health", h.Health.Health)
	router.Post("/process", h.Content.Process)

	router.Post("/quiz-complete", h.Progress.QuizComplete)
	router.Post("/flashcard-review", h.Progress.FlashcardReview)
	router.Post("/study-time", h.Progress.StudyTime)
	router.Post("/update-progress", h.Progress.UpdateProgress)
	router.Get("/progress/:session_id", vm.ValidateSessionParam(), h.Progress.GetProgress)
	router.Get("/analytics/:session_id", vm.ValidateSessionParam(), h.Progress.GetAnalytics)

	router.Post("/preferences", h.Progress.SetPreferences)
	router.Get("/preferences/:session_id", vm.ValidateSessionParam(), h.Progress.GetPreferences)
}
