package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/devconnector/directory-api/internal/api/handler"
	"github.com/devconnector/directory-api/internal/core/domain"
)

// msgResponse is the {"msg": ...} error envelope.
type msgResponse struct {
	Msg string `json:"msg"`
}

// errorsResponse is the {"errors": [...]} envelope for validation and
// credential failures.
type errorsResponse struct {
	Errors []handler.FieldMessage `json:"errors"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status and client message.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders either {"msg": "..."} or {"errors": [{"msg": "..."}]}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, any) {
	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorsResponse{Errors: ve.Errors}
	}

	// Known domain errors → deterministic HTTP codes and fixed wording.
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusBadRequest, single("User already exists")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, single("Invalid Credentials")
	case errors.Is(err, domain.ErrPasswordTooLong):
		return http.StatusBadRequest, single(handler.PasswordTooLongMsg)
	case errors.Is(err, domain.ErrTokenMissing):
		return http.StatusUnauthorized, msgResponse{Msg: "No token. Authorization denied!"}
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, msgResponse{Msg: "Token is not valid."}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, msgResponse{Msg: "User not found"}
	case errors.Is(err, domain.ErrNoProfile):
		return http.StatusBadRequest, msgResponse{Msg: "There is NO profile for this user"}
	case errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusBadRequest, msgResponse{Msg: "User Profile Not Found!"}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("request rejected")
		}
		return he.Code, msgResponse{Msg: fmt.Sprintf("%v", he.Message)}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, msgResponse{Msg: "Server Error"}
}

func single(msg string) errorsResponse {
	return errorsResponse{Errors: []handler.FieldMessage{{Msg: msg}}}
}
