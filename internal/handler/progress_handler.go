package handler

import (
	"microlearn/internal/dto"
	"microlearn/internal/middleware"
	"microlearn/internal/service"
	"microlearn/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ProgressHandler handles learner progress and analytics requests
type ProgressHandler struct {
	sessions  service.SessionService
	analytics service.AnalyticsService
	validator *validation.Validator
}

// NewProgressHandler creates a new ProgressHandler instance
func NewProgressHandler(sessions service.SessionService, analytics service.AnalyticsService) *ProgressHandler {
	return &ProgressHandler{
		sessions:  sessions,
		analytics: analytics,
		validator: validation.NewValidator(),
	}
}

// QuizComplete godoc
// @Summary Record a quiz result
// @Description Stores the percent score of a finished quiz. Re-submitting a quiz overwrites its score.
// @Tags progress
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body dto.QuizCompleteRequest true "Quiz result"
// @Success 200 {object} dto.ProgressUpdateResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quiz-complete [post]
func (h *ProgressHandler) QuizComplete(c *fiber.Ctx) error {
	var req dto.QuizCompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := h.validator.ValidateQuizComplete(&req); err != nil {
		return err
	}

	session, err := h.sessions.RecordQuizResult(c.UserContext(), req.SessionID, req.QuizID, req.Score)
	if err != nil {
		return err
	}
	return c.JSON(dto.ProgressUpdateResponse{Success: true, Progress: session})
}

// FlashcardReview godoc
// @Summary Record a flashcard review
// @Tags progress
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body dto.FlashcardReviewRequest true "Review"
// @Success 200 {object} dto.ProgressUpdateResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /flashcard-review [post]
func (h *ProgressHandler) FlashcardReview(c *fiber.Ctx) error {
	var req dto.FlashcardReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := h.validator.ValidateFlashcardReview(&req); err != nil {
		return err
	}

	session, err := h.sessions.RecordFlashcardReview(c.UserContext(), req.SessionID, req.CardID, req.Correct)
	if err != nil {
		return err
	}
	return c.JSON(dto.ProgressUpdateResponse{Success: true, Progress: session})
}

// StudyTime godoc
// @Summary Add study time
// @Tags progress
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body dto.StudyTimeRequest true "Seconds studied"
// @Success 200 {object} dto.ProgressUpdateResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /study-time [post]
func (h *ProgressHandler) StudyTime(c *fiber.Ctx) error {
	var req dto.StudyTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := h.validator.ValidateStudyTime(&req); err != nil {
		return err
	}

	session, err := h.sessions.RecordStudyTime(c.UserContext(), req.SessionID, req.Seconds)
	if err != nil {
		return err
	}
	return c.JSON(dto.ProgressUpdateResponse{Success: true, Progress: session})
}

// UpdateProgress godoc
// @Summary Apply a progress action
// @Description Actions: module_completed, quiz_completed, flashcard_reviewed, study_time. data is a JSON object encoded as a string.
// @Tags progress
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body dto.UpdateProgressRequest true "Action"
// @Success 200 {object} dto.ProgressUpdateResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /update-progress [post]
func (h *ProgressHandler) UpdateProgress(c *fiber.Ctx) error {
	var req dto.UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	data, err := h.validator.ValidateUpdateProgress(&req)
	if err != nil {
		return err
	}

	session, err := h.sessions.UpdateProgress(c.UserContext(), req.SessionID, req.Action, data)
	if err != nil {
		return err
	}
	return c.JSON(dto.ProgressUpdateResponse{Success: true, Progress: session})
}

// GetProgress godoc
// @Summary Get the raw session record
// @Tags progress
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.ProgressResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /progress/{session_id} [get]
func (h *ProgressHandler) GetProgress(c *fiber.Ctx) error {
	session, err := h.sessions.GetSession(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.ProgressResponse{Progress: session})
}

// GetAnalytics godoc
// @Summary Get learning analytics
// @Tags analytics
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} domain.Analytics
// @Failure 404 {object} middleware.ErrorResponse
// @Router /analytics/{session_id} [get]
func (h *ProgressHandler) GetAnalytics(c *fiber.Ctx) error {
	analytics, err := h.analytics.GetAnalytics(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(analytics)
}

// SetPreferences godoc
// @Summary Store learner preferences
// @Tags preferences
// @Accept json
// @Produce json
// @Param request body dto.PreferencesRequest true "Preferences"
// @Success 200 {object} dto.PreferencesResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /preferences [post]
func (h *ProgressHandler) SetPreferences(c *fiber.Ctx) error {
	var req dto.PreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := h.validator.ValidatePreferences(&req); err != nil {
		return err
	}

	prefs, err := h.sessions.SetPreferences(c.UserContext(), req.SessionID, req.Preferences)
	if err != nil {
		return err
	}
	return c.JSON(dto.PreferencesResponse{SessionID: req.SessionID, Preferences: prefs})
}

// GetPreferences godoc
// @Summary Get learner preferences
// @Tags preferences
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.PreferencesResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /preferences/{session_id} [get]
func (h *ProgressHandler) GetPreferences(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)
	prefs, err := h.sessions.GetPreferences(c.UserContext(), sessionID)
	if err != nil {
		return err
	}
	if prefs == nil {
		prefs = map[string]string{}
	}
	return c.JSON(dto.PreferencesResponse{SessionID: sessionID, Preferences: prefs})
}
