package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/streamhub/backend/internal/models"
	"github.com/streamhub/backend/internal/repositories"
)

var (
	// ErrSessionNotFound indicates the presented token does not map to an active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenExpired indicates the refresh token has expired and cannot be used.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

const (
	useAccess  = "access"
	useRefresh = "refresh"
)

type sessionClaims struct {
	Use string `json:"use"`
	jwt.RegisteredClaims
}

// Manager issues signed access tokens and rotating refresh tokens. The
// current refresh token is persisted on the user record, so each user holds
// at most one active session and rotation invalidates the previous token.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	users repositories.UserRepository
}

// NewManager constructs a Manager that signs tokens with the provided secret.
func NewManager(secret []byte, accessTTL, refreshTTL time.Duration, users repositories.UserRepository) *Manager {
	if len(secret) == 0 {
		panic("auth: signing secret must not be empty")
	}
	if users == nil {
		panic("auth: user repository must not be nil")
	}
	return &Manager{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		users:      users,
	}
}

// Issue creates a new token pair for the user and records the refresh token.
func (m *Manager) Issue(ctx context.Context, userID string) (models.SessionTokens, error) {
	if userID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := time.Now().UTC()
	accessExpires := now.Add(m.accessTTL)
	refreshExpires := now.Add(m.refreshTTL)

	accessToken, err := m.sign(userID, useAccess, now, accessExpires)
	if err != nil {
		return models.SessionTokens{}, err
	}
	refreshToken, err := m.sign(userID, useRefresh, now, refreshExpires)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.users.UpdateRefreshToken(ctx, userID, refreshToken); err != nil {
		return models.SessionTokens{}, fmt.Errorf("store refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpires,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpires,
	}, nil
}

// Verify checks an access token and returns the user id it was issued to.
func (m *Manager) Verify(accessToken string) (string, error) {
	claims, err := m.parse(accessToken, useAccess)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Refresh exchanges a refresh token for a new pair, rotating the stored
// token. A token that no longer matches the stored one has been superseded
// and is rejected.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	if refreshToken == "" {
		return models.SessionTokens{}, ErrSessionNotFound
	}

	claims, err := m.parse(refreshToken, useRefresh)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.SessionTokens{}, ErrRefreshTokenExpired
		}
		return models.SessionTokens{}, ErrSessionNotFound
	}

	user, err := m.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return models.SessionTokens{}, ErrSessionNotFound
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return models.SessionTokens{}, ErrSessionNotFound
	}

	return m.Issue(ctx, user.ID)
}

// Revoke clears the stored refresh token so the session cannot be renewed.
func (m *Manager) Revoke(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	_ = m.users.UpdateRefreshToken(ctx, userID, "")
}

func (m *Manager) sign(userID, use string, issued, expires time.Time) (string, error) {
	claims := sessionClaims{
		Use: use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", use, err)
	}
	return signed, nil
}

func (m *Manager) parse(raw, use string) (*sessionClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || claims.Use != use || claims.Subject == "" {
		return nil, ErrSessionNotFound
	}
	return claims, nil
}
