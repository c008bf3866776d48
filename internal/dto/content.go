package dto

import "microlearn/internal/domain"

// ProcessResponse is the result of an upload.
// @Description Generated learning bundle and the session it belongs to
type ProcessResponse struct {
	SessionID   string                 `json:"session_id"`
	Bundle      *domain.LearningBundle `json:"bundle"`
	InputAudio  string                 `json:"input_audio,omitempty"`
	Caption     string                 `json:"caption,omitempty"`
	InputText   string                 `json:"input_text,omitempty"`
	InputPrompt string                 `json:"input_prompt,omitempty"`
	Cached      bool                   `json:"cached"`
	Progress    *domain.Session        `json:"progress"`
}

// HealthResponse reports service liveness and dependency checks.
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}
