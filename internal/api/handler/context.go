package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/devconnector/directory-api/internal/api/middleware"
	"github.com/devconnector/directory-api/internal/core/domain"
)

// ctxIdentity returns the identity the Auth middleware attached to the request.
// A handler mounted without the gate gets domain.ErrTokenMissing, which the
// error handler renders as 401.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.UserID == "" {
		return nil, domain.ErrTokenMissing
	}
	return id, nil
}
