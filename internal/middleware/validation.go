package middleware

import (
	"microlearn/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const validatedSessionIDKey = "validated_session_id"

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateSessionParam validates the :session_id path parameter.
func (vm *ValidationMiddleware) ValidateSessionParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("session_id")
		if err := vm.validator.ValidateSessionID(sessionID); err != nil {
			return err // This will be handled by ErrorHandler middleware
		}

		// Store validated value in context for handlers to use
		c.Locals(validatedSessionIDKey, sessionID)
		return c.Next()
	}
}

// SessionID returns the id stored by ValidateSessionParam, falling back to the
// raw path parameter.
func SessionID(c *fiber.Ctx) string {
	if id, ok := c.Locals(validatedSessionIDKey).(string); ok {
		return id
	}
	return c.Params("session_id")
}
