package api

import (
	"errors"
	"log/slog"
	"net/http"

	breakdownDomain "github.com/felixgeelhaar/stride/internal/breakdown/domain"
	goalDomain "github.com/felixgeelhaar/stride/internal/goals/domain"
	intelligenceDomain "github.com/felixgeelhaar/stride/internal/intelligence/domain"
	reflectionsDomain "github.com/felixgeelhaar/stride/internal/reflections/domain"
)

// statusFor maps application errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, intelligenceDomain.ErrInvalidInput),
		errors.Is(err, goalDomain.ErrEmptyTitle),
		errors.Is(err, goalDomain.ErrInvalidStatus),
		errors.Is(err, goalDomain.ErrInvalidPriority),
		errors.Is(err, breakdownDomain.ErrEmptyGoal),
		errors.Is(err, breakdownDomain.ErrEmptyTask),
		errors.Is(err, reflectionsDomain.ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, goalDomain.ErrGoalNotFound),
		errors.Is(err, goalDomain.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, goalDomain.ErrConcurrentUpdate),
		errors.Is(err, intelligenceDomain.ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.Is(err, breakdownDomain.ErrUpstream),
		errors.Is(err, breakdownDomain.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, breakdownDomain.ErrUnavailable),
		errors.Is(err, breakdownDomain.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeAppError writes err with its mapped status. Internal errors are
// logged and their details withheld from the client.
func writeAppError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, action string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "action", action, "error", err)
		writeError(w, status, "Failed to "+action)
		return
	}
	writeError(w, status, err.Error())
}
