package handler

import "microlearn/internal/domain"

func invalidBody(err error) error {
	return domain.NewError(domain.CodeValidation, "Invalid request body", err)
}
