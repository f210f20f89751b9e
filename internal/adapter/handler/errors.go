package handler

import (
	"errors"
	"net/http"

	"github.com/rl1809/aspas/internal/core/domain"
)

// classify maps a service error onto an HTTP status and the message shown
// to the client. Storage details never leave the process.
func classify(err error) (int, string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "admin role required"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate request"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusGone, "insufficient stock"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
