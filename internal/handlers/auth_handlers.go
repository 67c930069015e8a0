package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"traindesk/internal/caching"
	"traindesk/internal/common"
	"traindesk/internal/middleware"
	"traindesk/internal/models"
	"traindesk/internal/repositories"
	"traindesk/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	loginRateLimit  = 10
	loginRateWindow = 5 * time.Minute
)

// AuthHandlers plays the auth-provider role: signup, login, signout, and the
// forced password update. Everything else in the codebase only ever consumes
// the session the gate resolved.
type AuthHandlers struct {
	profileRepo    repositories.ProfileRepository
	membershipRepo repositories.MembershipRepository
	sessionSvc     services.SessionService
	cacheSvc       caching.CacheService
}

func NewAuthHandlers(profileRepo repositories.ProfileRepository, membershipRepo repositories.MembershipRepository, sessionSvc services.SessionService, cacheSvc caching.CacheService) *AuthHandlers {
	return &AuthHandlers{
		profileRepo:    profileRepo,
		membershipRepo: membershipRepo,
		sessionSvc:     sessionSvc,
		cacheSvc:       cacheSvc,
	}
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
}

// Signup creates a profile and starts a session. New users land on /setup.
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return common.SendValidationError(c, "email", "Email and password are required")
	}
	if req.FullName == "" {
		return common.SendValidationError(c, "full_name", "Full name is required")
	}
	if len(req.Password) < 6 {
		return common.SendValidationError(c, "password", "Password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return common.SendServerError(c, "Failed to create account")
	}

	profile := &models.Profile{
		ID:           uuid.New(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
	}
	if err := h.profileRepo.Create(c.Request().Context(), profile); err != nil {
		// Specific store errors stay server-side for auth operations.
		log.Printf("WARN: signup failed for %s: %v", req.Email, err)
		return common.SendClientError(c, "Could not create account with these details")
	}

	token, err := h.sessionSvc.Issue(profile)
	if err != nil {
		return common.SendServerError(c, "Failed to start session")
	}
	middleware.SetSessionCookie(c, token)

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"token":    token,
		"redirect": "/setup",
	})
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies the password and starts a session. The response carries the
// caller's tenant slug when a membership exists, or points at /setup.
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return common.SendValidationError(c, "email", "Email and password are required")
	}

	rateKey := "login:" + req.Email + ":" + c.RealIP()
	if limited, err := h.cacheSvc.IsRateLimited(ctx, rateKey, loginRateLimit, loginRateWindow); err != nil {
		log.Printf("WARN: rate limit check failed: %v", err)
	} else if limited {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts")
	}
	if err := h.cacheSvc.IncrementRateLimit(ctx, rateKey, loginRateWindow); err != nil {
		log.Printf("WARN: rate limit increment failed: %v", err)
	}

	profile, err := h.profileRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("WARN: login lookup failed for %s: %v", req.Email, err)
		}
		return common.SendUnauthorizedError(c)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return common.SendUnauthorizedError(c)
	}

	token, err := h.sessionSvc.Issue(profile)
	if err != nil {
		log.Printf("ERROR: failed to issue session for %s: %v", profile.ID, err)
		return common.SendServerError(c, "Failed to start session")
	}
	middleware.SetSessionCookie(c, token)

	// Route the user to their tenant, or to setup when they have none.
	redirect := "/setup"
	if slug, err := h.membershipRepo.FirstActiveSlug(ctx, profile.ID); err == nil {
		redirect = "/t/" + slug + "/admin"
	} else if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("WARN: membership lookup failed for %s: %v", profile.ID, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":    token,
		"redirect": redirect,
	})
}

// Signout clears the session cookie.
func (h *AuthHandlers) Signout(c echo.Context) error {
	middleware.ClearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"status": "signed_out"})
}

type UpdatePasswordRequest struct {
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// UpdatePassword replaces the caller's password and clears the forced-reset
// flag, releasing them from the gate's redirect.
func (h *AuthHandlers) UpdatePassword(c echo.Context) error {
	ctx := c.Request().Context()

	principal, ok := common.GetPrincipalFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req UpdatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if len(req.Password) < 6 {
		return common.SendValidationError(c, "password", "Password must be at least 6 characters")
	}
	if req.Password != req.ConfirmPassword {
		return common.SendValidationError(c, "confirm_password", "Passwords don't match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return common.SendServerError(c, "Failed to update password")
	}

	if err := h.profileRepo.UpdatePassword(ctx, principal.ID, string(hash)); err != nil {
		log.Printf("ERROR: password update failed for %s: %v", principal.ID, err)
		return common.SendServerError(c, "Failed to update password")
	}

	return c.JSON(http.StatusOK, map[string]string{"redirect": "/"})
}
