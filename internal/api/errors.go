package api

import (
	"errors"
	"log/slog"
	"net/http"

	errorvalues "github.com/limbo/habitrack/internal/error_values"
	"github.com/limbo/habitrack/pkg/httputil"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

// Ownership mismatches look exactly like missing rows to the caller.
var serviceErrors = []errorMapping{
	{errorvalues.ErrValidation, http.StatusBadRequest, "validation failed"},
	{errorvalues.ErrInvalidDate, http.StatusBadRequest, "invalid date"},
	{errorvalues.ErrWrongCredentials, http.StatusUnauthorized, "invalid email or password"},
	{errorvalues.ErrInvalidToken, http.StatusUnauthorized, "authorization failed: invalid token"},
	{errorvalues.ErrHabitNotFound, http.StatusNotFound, "habit not found"},
	{errorvalues.ErrWrongOwner, http.StatusNotFound, "habit not found"},
	{errorvalues.ErrProgressNotFound, http.StatusNotFound, "progress not found"},
	{errorvalues.ErrShareNotFound, http.StatusNotFound, "shared progress not found"},
	{errorvalues.ErrUserNotFound, http.StatusNotFound, "user not found"},
	{errorvalues.ErrUserExists, http.StatusConflict, "user with such email already exists"},
	{errorvalues.ErrShareExists, http.StatusConflict, "share link already exists"},
	{errorvalues.ErrShareExpired, http.StatusGone, "shared progress has expired"},
}

// writeServiceError answers with the status of the first known sentinel in
// err and with 500 otherwise. Validation details are echoed back, internal
// ones only logged.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	for _, m := range serviceErrors {
		if !errors.Is(err, m.target) {
			continue
		}
		logger.Warn(op+" error", slog.Int("status", m.status), slog.String("error", err.Error()))
		var details error
		if m.status == http.StatusBadRequest {
			details = err
		}
		httputil.WriteErrorResponse(w, m.status, m.message, details)
		return
	}
	logger.Error(op+" error: service error", slog.String("error", err.Error()))
	httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error", nil)
}

func writeBadBody(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	logger.Warn(op+" error: invalid request body", slog.String("error", err.Error()))
	httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", err)
}

func writeUnauthorized(w http.ResponseWriter, logger *slog.Logger, op string) {
	logger.Error(op + " error: unauthorized")
	httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
}
