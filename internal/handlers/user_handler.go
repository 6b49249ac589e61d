package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locketbot/backend/internal/middleware"
	"github.com/locketbot/backend/internal/models"
	"github.com/locketbot/backend/internal/repositories"
)

// UserHandler handles HTTP requests for the authenticated user's own profile
type UserHandler struct {
	users repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users repositories.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterUserRoutes registers profile and settings routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/me", h.Me)
	g.PATCH("/users/me/settings", h.UpdateSettings)
}

// Me returns the authenticated user's profile, invite code included
func (h *UserHandler) Me(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	user, err := h.users.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateSettings applies partial updates to the user's notification settings
func (h *UserHandler) UpdateSettings(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	var req models.UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	ctx := c.Request().Context()

	user, err := h.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return httpError(err)
	}

	if req.NotifyOnReceive != nil {
		user.NotifyOnReceive = *req.NotifyOnReceive
		if err := h.users.UpdateUser(ctx, user); err != nil {
			return httpError(err)
		}
	}

	return c.JSON(http.StatusOK, user)
}
