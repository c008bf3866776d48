package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode"

	"microlearn/internal/domain"
	"microlearn/internal/dto"
)

const (
	maxIDLength       = 128
	maxPreferenceSize = 1024
)

// Validator checks request shapes before they reach the services.
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSessionID requires a non-empty identifier without control characters.
func (v *Validator) ValidateSessionID(id string) error {
	return validateKey("session_id", id)
}

func (v *Validator) ValidateQuizComplete(req *dto.QuizCompleteRequest) error {
	if err := v.ValidateSessionID(req.SessionID); err != nil {
		return err
	}
	if err := validateKey("quiz_id", req.QuizID); err != nil {
		return err
	}
	if math.IsNaN(req.Score) || req.Score < 0 || req.Score > 100 {
		return domain.NewValidationError("score must be between 0 and 100").WithContext("field", "score")
	}
	return nil
}

func (v *Validator) ValidateFlashcardReview(req *dto.FlashcardReviewRequest) error {
	if err := v.ValidateSessionID(req.SessionID); err != nil {
		return err
	}
	return validateKey("card_id", req.CardID)
}

func (v *Validator) ValidateStudyTime(req *dto.StudyTimeRequest) error {
	if err := v.ValidateSessionID(req.SessionID); err != nil {
		return err
	}
	if req.Seconds < 0 {
		return domain.NewValidationError("seconds must not be negative").WithContext("field", "seconds")
	}
	return nil
}

// ValidateUpdateProgress also decodes Data. A value that is not a JSON object
// is kept under the "data" key.
func (v *Validator) ValidateUpdateProgress(req *dto.UpdateProgressRequest) (map[string]interface{}, error) {
	if err := v.ValidateSessionID(req.SessionID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Action) == "" {
		return nil, domain.NewValidationError("action is required").WithContext("field", "action")
	}
	data := map[string]interface{}{}
	if strings.TrimSpace(req.Data) == "" {
		return data, nil
	}
	if err := json.Unmarshal([]byte(req.Data), &data); err != nil {
		return map[string]interface{}{"data": req.Data}, nil
	}
	return data, nil
}

func (v *Validator) ValidatePreferences(req *dto.PreferencesRequest) error {
	if err := v.ValidateSessionID(req.SessionID); err != nil {
		return err
	}
	if len(req.Preferences) == 0 {
		return domain.NewValidationError("preferences must not be empty").WithContext("field", "preferences")
	}
	for k, val := range req.Preferences {
		if err := validateKey("preference key", k); err != nil {
			return err
		}
		if len(val) > maxPreferenceSize {
			return domain.NewOutOfRangeError(fmt.Sprintf("preference %q length", k), len(val), 0, maxPreferenceSize)
		}
	}
	return nil
}

func validateKey(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewValidationError(field + " is required").WithContext("field", field)
	}
	if len(value) > maxIDLength {
		return domain.NewOutOfRangeError(field+" length", len(value), 1, maxIDLength)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return domain.NewValidationError(field + " contains control characters").WithContext("field", field)
		}
	}
	return nil
}
