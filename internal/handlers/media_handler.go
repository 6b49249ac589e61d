package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/locketbot/backend/internal/middleware"
	"github.com/locketbot/backend/internal/repositories"
	"github.com/locketbot/backend/internal/services"
	"github.com/locketbot/backend/pkg/apperrors"
	"gorm.io/gorm"
)

// MediaHandler handles HTTP requests related to media distribution and feeds
type MediaHandler struct {
	distribution *services.DistributionService
	users        repositories.UserRepository
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(distribution *services.DistributionService, users repositories.UserRepository) *MediaHandler {
	return &MediaHandler{distribution: distribution, users: users}
}

// RegisterMediaRoutes registers media-related routes
func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.POST("/media/distribute", h.Distribute)
	g.GET("/media/received", h.GetReceivedMoments)
	g.GET("/media/sent", h.GetSentMedia)
	g.POST("/media/:id/viewed", h.MarkViewed)
	g.DELETE("/media/:id", h.DeleteMedia)
}

// Distribute accepts a multipart upload and broadcasts it to every connected friend
func (h *MediaHandler) Distribute(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	ctx := c.Request().Context()

	sender, err := h.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authenticated user not found in database")
		}
		return httpError(err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file upload")
	}
	if fileHeader.Size > services.MediaMaxSizeBytes {
		return httpError(apperrors.InvalidArg("file too large, the limit is 10MB"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read file upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read file upload")
	}

	result, err := h.distribution.Distribute(ctx, sender, services.DistributeInput{
		Data:      data,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		SizeBytes: fileHeader.Size,
		Caption:   c.FormValue("caption"),
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// GetReceivedMoments returns a page of the authenticated user's received feed
func (h *MediaHandler) GetReceivedMoments(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	page, limit := pagination(c)
	moments, err := h.distribution.ReceivedMoments(c.Request().Context(), claims.UserID, page, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, moments)
}

// GetSentMedia returns a page of the authenticated user's own sent media
func (h *MediaHandler) GetSentMedia(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	page, limit := pagination(c)
	media, err := h.distribution.SentMedia(c.Request().Context(), claims.UserID, page, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, media)
}

// MarkViewed stamps the viewed time on the authenticated user's delivery record
func (h *MediaHandler) MarkViewed(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	mediaItemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid media item ID")
	}

	if err := h.distribution.MarkViewed(c.Request().Context(), uint(mediaItemID), claims.UserID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteMedia deletes a media item the authenticated user sent
func (h *MediaHandler) DeleteMedia(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	mediaItemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid media item ID")
	}

	if err := h.distribution.DeleteMedia(c.Request().Context(), uint(mediaItemID), claims.UserID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func pagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return page, limit
}
