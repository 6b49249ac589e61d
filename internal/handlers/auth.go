package handlers

import (
	"errors"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/locketbot/backend/internal/middleware"
	"github.com/locketbot/backend/internal/models"
	"github.com/locketbot/backend/internal/repositories"
	"github.com/locketbot/backend/internal/services"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related HTTP requests for the dashboard
type AuthHandler struct {
	users        repositories.UserRepository
	connections  *services.ConnectionService
	firebaseAuth *auth.Client
	jwtSecret    string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users repositories.UserRepository, connections *services.ConnectionService, firebaseAuthClient *auth.Client, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		users:        users,
		connections:  connections,
		firebaseAuth: firebaseAuthClient,
		jwtSecret:    jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/firebase-login", h.FirebaseLogin)
	g.GET("/session", h.Session, middleware.FirebaseAuthMiddleware(h.firebaseAuth))
}

// FirebaseLogin verifies a Firebase ID token, upserts the matching user and
// issues a service JWT for the protected API.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
	}

	user, err := h.connections.GetOrCreateUser(ctx, req.DiscordID, req.Username, req.AvatarURL)
	if err != nil {
		return httpError(err)
	}

	if user.FirebaseUID != token.UID {
		user.FirebaseUID = token.UID
		if err := h.users.UpdateUser(ctx, user); err != nil {
			return httpError(err)
		}
	}

	claims := &models.JwtCustomClaims{
		UserID:    user.ID,
		DiscordID: user.DiscordID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := jwtToken.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to sign token")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": signed,
		"user":  user,
	})
}

// Session returns the profile linked to a verified Firebase token, letting the
// dashboard check whether the account was connected to a Discord user yet.
func (h *AuthHandler) Session(c echo.Context) error {
	uid, ok := c.Get("firebaseUID").(string)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing Firebase credentials")
	}

	user, err := h.users.GetUserByFirebaseUID(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No linked account for this Firebase user")
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}
