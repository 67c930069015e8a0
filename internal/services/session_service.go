package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"traindesk/internal/models"
	"traindesk/internal/repositories"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ResolvedSession is the outcome of validating a request's credentials.
// Principal is nil for anything that is not a currently valid session.
// RefreshedToken is non-empty when the session cookie should be rewritten;
// the gate must carry it on every response path, redirects included.
type ResolvedSession struct {
	Principal      *models.Profile
	RefreshedToken string
}

// SessionService validates session tokens and loads the authenticated
// principal. Validation is delegated to the token issuer: either this
// service's own HS256 secret, or an external identity provider's JWKS when
// one is configured. It never performs password logic.
type SessionService interface {
	// Resolve returns (nil, nil) for missing, malformed, or expired
	// credentials. An error is returned only for dependency failures
	// (profile store down, JWKS unavailable), which callers may treat as
	// "fail open."
	Resolve(ctx context.Context, token string) (*ResolvedSession, error)
	// Issue creates a session token for the principal. Used by the login
	// and signup flows when no external provider is configured.
	Issue(principal *models.Profile) (string, error)
}

// SessionClaims carries the principal's identity in the session token.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type sessionService struct {
	profileRepo repositories.ProfileRepository
	secret      []byte
	jwks        *keyfunc.JWKS
	tokenTTL    time.Duration
	refreshTTL  time.Duration
}

// NewSessionService creates a session service validating against the local
// HS256 secret. Tokens within refreshTTL of expiry are transparently
// re-issued during Resolve.
func NewSessionService(profileRepo repositories.ProfileRepository, secret string, tokenTTL, refreshTTL time.Duration) SessionService {
	return &sessionService{
		profileRepo: profileRepo,
		secret:      []byte(secret),
		tokenTTL:    tokenTTL,
		refreshTTL:  refreshTTL,
	}
}

// NewJWKSSessionService creates a session service that validates tokens
// against an external identity provider's JWKS endpoint. Token issuance is
// the provider's job in this mode; Issue returns an error.
func NewJWKSSessionService(profileRepo repositories.ProfileRepository, jwksURL string) (SessionService, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:  time.Hour,
		RefreshRateLimit: 5 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", jwksURL, err)
	}
	return &sessionService{
		profileRepo: profileRepo,
		jwks:        jwks,
	}, nil
}

func (s *sessionService) Resolve(ctx context.Context, token string) (*ResolvedSession, error) {
	if token == "" {
		return &ResolvedSession{}, nil
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, s.keyfunc())
	if err != nil || !parsed.Valid {
		// Malformed or expired credentials are "unauthenticated", not an error.
		return &ResolvedSession{}, nil
	}

	userID, err := parseSubject(claims)
	if err != nil {
		return &ResolvedSession{}, nil
	}

	// The profile row is the source of truth for flags like
	// force_password_reset; token claims go stale the moment the flag flips.
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &ResolvedSession{}, nil
		}
		return nil, fmt.Errorf("failed to load profile for session: %w", err)
	}

	resolved := &ResolvedSession{Principal: profile}

	if s.jwks == nil && claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) < s.refreshTTL {
		refreshed, err := s.Issue(profile)
		if err == nil {
			resolved.RefreshedToken = refreshed
		}
	}

	return resolved, nil
}

func (s *sessionService) Issue(principal *models.Profile) (string, error) {
	if s.jwks != nil {
		return "", errors.New("sessions are issued by the external identity provider")
	}

	now := time.Now()
	claims := SessionClaims{
		Email: principal.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "traindesk",
			Subject:   principal.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func parseSubject(claims *SessionClaims) (uuid.UUID, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(sub)
}

func (s *sessionService) keyfunc() jwt.Keyfunc {
	if s.jwks != nil {
		return s.jwks.Keyfunc
	}
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}
}
