package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	CodeInternal   ErrorCode = "INTERNAL_ERROR"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	CodeOutOfRange ErrorCode = "OUT_OF_RANGE"
	CodeUpstream   ErrorCode = "UPSTREAM_FAILURE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Err     error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// WithContext attaches a detail that is reported to API callers.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewSessionNotFoundError(sessionID string) *DomainError {
	return NewError(CodeNotFound, "Session not found", nil).WithContext("session_id", sessionID)
}

func NewValidationError(message string) *DomainError {
	return NewError(CodeValidation, message, nil)
}

func NewOutOfRangeError(field string, value, min, max int) *DomainError {
	return NewError(CodeOutOfRange, fmt.Sprintf("%s must be between %d and %d", field, min, max), nil).
		WithContext("field", field).
		WithContext("value", value)
}

func NewUpstreamError(message string, err error) *DomainError {
	return NewError(CodeUpstream, message, err)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func hasCode(err error, codes ...ErrorCode) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	for _, c := range codes {
		if domainErr.Code == c {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err carries CodeNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsValidation reports whether err is a validation failure. Range errors count.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation, CodeOutOfRange)
}

// IsOutOfRange reports whether err carries CodeOutOfRange.
func IsOutOfRange(err error) bool {
	return hasCode(err, CodeOutOfRange)
}

// IsUpstream reports whether err came from an external AI collaborator.
func IsUpstream(err error) bool {
	return hasCode(err, CodeUpstream)
}
