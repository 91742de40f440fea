package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/inotebook/backend/internal/core/domain"
	"github.com/inotebook/backend/internal/pkg/metrics"
)

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "auth-token"

// UserIDKey is the echo.Context key holding the authenticated user id.
const UserIDKey = "user_id"

type userIDCtxKey struct{}

// TokenVerifier resolves a session token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// FetchUser rejects requests without a valid session token and exposes the
// resolved user id to the next handler. Every failure is reported as
// domain.ErrUnauthenticated.
func FetchUser(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(TokenHeader)
			if token == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return domain.ErrUnauthenticated
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues(verifyResult(err)).Inc()
				return domain.ErrUnauthenticated
			}

			metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
			c.Set(UserIDKey, userID)
			req := c.Request()
			c.SetRequest(req.WithContext(WithUserID(req.Context(), userID)))

			return next(c)
		}
	}
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDCtxKey{}, userID)
}

// UserIDFromContext returns the user id stored by FetchUser.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDCtxKey{}).(string)
	return id, ok && id != ""
}

func verifyResult(err error) string {
	if errors.Is(err, domain.ErrMalformedToken) {
		return "malformed"
	}
	return "invalid"
}
