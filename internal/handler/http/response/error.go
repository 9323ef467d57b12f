package response

import (
	"errors"
	"net/http"

	"github.com/sitebooks/sitebooks-backend/internal/domain/auth"
	"github.com/sitebooks/sitebooks-backend/internal/domain/dashboard"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())

	// Dashboard domain errors
	case errors.Is(err, dashboard.ErrSiteNotFound):
		NotFound(w, "Site not found")
	case errors.Is(err, dashboard.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
