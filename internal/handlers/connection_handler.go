package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/locketbot/backend/internal/middleware"
	"github.com/locketbot/backend/internal/models"
	"github.com/locketbot/backend/internal/ratelimit"
	"github.com/locketbot/backend/internal/repositories"
	"github.com/locketbot/backend/internal/services"
	"github.com/locketbot/backend/pkg/apperrors"
	"gorm.io/gorm"
)

// ConnectionHandler handles HTTP requests related to the connection graph
type ConnectionHandler struct {
	connections *services.ConnectionService
	users       repositories.UserRepository
	limiter     *ratelimit.Limiter
}

// NewConnectionHandler creates a new ConnectionHandler
func NewConnectionHandler(connections *services.ConnectionService, users repositories.UserRepository, limiter *ratelimit.Limiter) *ConnectionHandler {
	return &ConnectionHandler{connections: connections, users: users, limiter: limiter}
}

// RegisterConnectionRoutes registers connection-related routes
func (h *ConnectionHandler) RegisterConnectionRoutes(g *echo.Group) {
	g.POST("/connections/request", h.RequestConnection)
	g.POST("/connections/invite", h.ConnectByInvite)
	g.GET("/connections/pending", h.GetPendingRequests)
	g.PUT("/connections/:id/accept", h.AcceptConnection)
	g.DELETE("/connections/:id", h.RejectConnection)
	g.DELETE("/connections/friends/:discordId", h.RemoveFriend)
	g.GET("/connections/friends", h.GetFriends)
}

// RequestConnection handles sending a connection request
func (h *ConnectionHandler) RequestConnection(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}
	if err := h.checkCommandLimit(c, claims.DiscordID); err != nil {
		return err
	}

	var req models.ConnectionRequestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	target, err := h.users.GetUserByDiscordID(ctx, req.TargetDiscordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Target user not found")
		}
		return httpError(err)
	}

	conn, err := h.connections.RequestConnection(ctx, claims.UserID, target.ID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, conn)
}

// ConnectByInvite handles connecting via an invite code
func (h *ConnectionHandler) ConnectByInvite(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}
	if err := h.checkCommandLimit(c, claims.DiscordID); err != nil {
		return err
	}

	var req models.InviteConnectBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	target, err := h.connections.ConnectByInvite(c.Request().Context(), claims.UserID, req.Code)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"connected_with": target,
	})
}

// GetPendingRequests retrieves pending connection requests for the authenticated user
func (h *ConnectionHandler) GetPendingRequests(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	requests, err := h.connections.ListPendingRequests(c.Request().Context(), claims.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, requests)
}

// AcceptConnection handles accepting a pending connection request
func (h *ConnectionHandler) AcceptConnection(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	connectionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid connection ID")
	}

	conn, err := h.connections.AcceptConnection(c.Request().Context(), uint(connectionID), claims.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, conn)
}

// RejectConnection handles rejecting (deleting) a pending connection request
func (h *ConnectionHandler) RejectConnection(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	connectionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid connection ID")
	}

	if err := h.connections.RejectConnection(c.Request().Context(), uint(connectionID), claims.UserID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveFriend handles disconnecting from another user
func (h *ConnectionHandler) RemoveFriend(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	ctx := c.Request().Context()

	target, err := h.users.GetUserByDiscordID(ctx, c.Param("discordId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Target user not found")
		}
		return httpError(err)
	}

	if err := h.connections.RemoveConnection(ctx, claims.UserID, target.ID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetFriends retrieves the authenticated user's accepted connections
func (h *ConnectionHandler) GetFriends(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	friends, err := h.connections.ListFriends(c.Request().Context(), claims.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, friends)
}

// checkCommandLimit applies the command-class window to graph mutations. A
// limiter outage maps to 503, not 429.
func (h *ConnectionHandler) checkCommandLimit(c echo.Context, discordID string) error {
	admitted, err := h.limiter.Check(c.Request().Context(), ratelimit.CommandKey(discordID), ratelimit.Command)
	if err != nil {
		return httpError(apperrors.Unavailable("rate limiter unavailable", err))
	}
	if !admitted {
		return httpError(apperrors.ErrRateLimited)
	}
	return nil
}
