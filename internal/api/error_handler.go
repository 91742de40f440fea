package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/inotebook/backend/internal/core/domain"
)

const internalErrorMessage = "Internal server error"

// errorResponse is the envelope for single-message errors.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// validationResponse is the envelope for field-level validation errors.
type validationResponse struct {
	Success bool                `json:"success"`
	Errors  []domain.FieldError `json:"errors"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders validation failures as {"success": false, "errors": [{field, msg}]}.
//   - Maps known domain errors to 4xx codes with their public message.
//   - Logs anything else and answers with a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, validationResponse{Errors: ve.Fields})
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, timeouts, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnexpected(log, c, err)
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInternal):
		// Checked first: an internal error may wrap a domain sentinel as its cause.
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "Please authenticate using a valid token"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, "Sorry a user with this email already exists"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "Please try to login with correct credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "Too many failed login attempts, try again later"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrNoteNotFound):
		return http.StatusNotFound, "Note not found"
	}

	logUnexpected(log, c, err)
	return http.StatusInternalServerError, internalErrorMessage
}

func logUnexpected(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
