package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/labstack/echo/v4"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type tokenIssuer interface {
	Issue(userID, email string) (string, time.Time, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	firebaseAuth idTokenVerifier
	issuer       tokenIssuer
	identity     identity.Provider
	log          *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. issuer is nil when API tokens are
// not in use and clients send Firebase ID tokens directly.
func NewAuthHandler(firebaseAuth idTokenVerifier, issuer tokenIssuer, provider identity.Provider, log *slog.Logger) *AuthHandler {
	return &AuthHandler{firebaseAuth: firebaseAuth, issuer: issuer, identity: provider, log: log}
}

// RegisterAuthRoutes registers the unauthenticated auth routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	if h.issuer != nil {
		g.POST("/firebase-login", h.FirebaseLogin)
	}
}

// RegisterProfileRoutes registers routes about the authenticated caller
func (h *AuthHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/auth/me", h.Me)
}

// FirebaseLogin exchanges a Firebase ID token for an API token
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.firebaseAuth.VerifyIDToken(c.Request().Context(), req.IDToken)
	if err != nil {
		h.log.InfoContext(c.Request().Context(), "firebase login rejected", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}
	email, _ := token.Claims["email"].(string)

	signed, expiresAt, err := h.issuer.Issue(token.UID, email)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, echo.Map{
		"token":      signed,
		"expires_at": expiresAt,
		"user_id":    token.UID,
	}, "Login successful")
}

// Me returns the caller's profile and organization role
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	profile, err := h.identity.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	data := echo.Map{"user": profile, "organization_id": nil, "role": nil, "is_admin": false}
	membership, err := identity.PrimaryMembership(ctx, h.identity, userID)
	switch {
	case err == nil:
		data["organization_id"] = membership.OrganizationID
		data["role"] = membership.Role
		data["is_admin"] = identity.IsAdminRole(membership.Role)
	case errors.Is(err, domain.ErrNotFound):
	default:
		h.log.WarnContext(ctx, "membership lookup failed", slog.String("user_id", userID), slog.Any("error", err))
	}
	return respond(c, http.StatusOK, data, "")
}
