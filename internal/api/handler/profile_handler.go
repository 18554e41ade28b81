package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/devconnector/directory-api/internal/core/domain"
	"github.com/devconnector/directory-api/internal/core/ports"
)

// ProfileHandler handles HTTP requests for profile operations.
type ProfileHandler struct {
	service ports.ProfileService
}

func NewProfileHandler(service ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Me handles GET /api/profile/me.
//
// @Summary      Current user's profile
// @Tags         profile
// @Produce      json
// @Security     TokenAuth
// @Success      200  {object}  ports.ProfileView
// @Failure      400  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Router       /api/profile/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	view, err := h.service.GetMine(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Upsert handles POST /api/profile.
//
// @Summary      Create or update the current user's profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        body  body      profileRequest  true  "Profile fields"
// @Success      200   {object}  ports.ProfileView
// @Failure      400   {object}  errorsResponse
// @Failure      401   {object}  messageResponse
// @Router       /api/profile [post]
func (h *ProfileHandler) Upsert(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}
	req.Status = strings.TrimSpace(req.Status)
	req.Skills = strings.TrimSpace(req.Skills)
	if err := c.Validate(&req); err != nil {
		return err
	}

	view, err := h.service.Upsert(c.Request().Context(), toUpsertInput(id.UserID, req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// List handles GET /api/profile.
//
// @Summary      List all profiles
// @Tags         profile
// @Produce      json
// @Success      200  {array}   ports.ProfileView
// @Failure      500  {object}  messageResponse
// @Router       /api/profile [get]
func (h *ProfileHandler) List(c echo.Context) error {
	views, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// GetByUser handles GET /api/profile/user/:user_id.
//
// @Summary      Profile by user id
// @Tags         profile
// @Produce      json
// @Param        user_id  path      string  true  "Owner user id"
// @Success      200      {object}  ports.ProfileView
// @Failure      400      {object}  messageResponse
// @Router       /api/profile/user/{user_id} [get]
func (h *ProfileHandler) GetByUser(c echo.Context) error {
	view, err := h.service.GetByUser(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /api/profile, removing the caller's profile and account.
//
// @Summary      Delete profile and user
// @Tags         profile
// @Produce      json
// @Security     TokenAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Router       /api/profile [delete]
func (h *ProfileHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteAccount(c.Request().Context(), id.UserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Msg: "User Deleted"})
}

func toUpsertInput(userID string, req profileRequest) ports.UpsertProfileInput {
	return ports.UpsertProfileInput{
		UserID:         userID,
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Bio:            req.Bio,
		Status:         req.Status,
		GitHubUsername: req.GitHubUsername,
		Skills:         req.Skills,
		Social: domain.Social{
			YouTube:   req.YouTube,
			Twitter:   req.Twitter,
			Facebook:  req.Facebook,
			LinkedIn:  req.LinkedIn,
			Instagram: req.Instagram,
		},
	}
}
