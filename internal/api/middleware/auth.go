package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/devconnector/directory-api/internal/api/metrics"
	"github.com/devconnector/directory-api/internal/core/domain"
	"github.com/devconnector/directory-api/internal/core/ports"
)

// TokenHeader carries the bearer token on protected requests.
const TokenHeader = "x-auth-token"

// IdentityKey is the echo.Context key holding the caller's *domain.Identity.
const IdentityKey = "identity"

// Auth verifies the token header and attaches the caller's identity to the
// context. A missing token yields domain.ErrTokenMissing and any rejected one
// domain.ErrTokenInvalid; the next handler does not run in either case.
func Auth(verifier ports.TokenVerifier, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(TokenHeader))
			if raw == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return domain.ErrTokenMissing
			}

			identity, err := verifier.Verify(raw)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				log.Debug().
					Str("path", c.Path()).
					Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
					Msg("rejected access token")
				return domain.ErrTokenInvalid
			}

			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Auth, if any.
func IdentityFrom(c echo.Context) (*domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(*domain.Identity)
	return id, ok && id != nil
}
