package jwt

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrRevokedToken = errors.New("token has been revoked")
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

func init() {
	// Sub-second issue times let a sign-in that follows a sign-out in the
	// same second produce tokens newer than the revocation mark.
	jwt.TimePrecision = time.Millisecond
}

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Type   string `json:"type"`
}

// TokenPair is the result of issuing a session.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Config holds token settings.
type Config struct {
	Secret          string        `mapstructure:"secret"`
	Issuer          string        `mapstructure:"issuer"`
	AccessDuration  time.Duration `mapstructure:"access_duration"`
	RefreshDuration time.Duration `mapstructure:"refresh_duration"`
}

// Manager issues and validates HS256 tokens.
//
// Revocation is per user: every token issued before the user's most recent
// revocation is rejected, at millisecond resolution. The store is
// process-local.
type Manager struct {
	secret          []byte
	issuer          string
	accessDuration  time.Duration
	refreshDuration time.Duration
	now             func() time.Time

	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewManager creates a token manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 16 {
		return nil, errors.New("jwt secret must be at least 16 bytes")
	}
	if cfg.AccessDuration <= 0 {
		cfg.AccessDuration = 15 * time.Minute
	}
	if cfg.RefreshDuration <= 0 {
		cfg.RefreshDuration = 7 * 24 * time.Hour
	}

	return &Manager{
		secret:          []byte(cfg.Secret),
		issuer:          cfg.Issuer,
		accessDuration:  cfg.AccessDuration,
		refreshDuration: cfg.RefreshDuration,
		now:             time.Now,
		revoked:         make(map[string]time.Time),
	}, nil
}

// GenerateTokenPair creates access and refresh tokens for a user.
func (m *Manager) GenerateTokenPair(userID, email string) (*TokenPair, error) {
	now := m.now()
	pair := &TokenPair{
		AccessExpiresAt:  now.Add(m.accessDuration),
		RefreshExpiresAt: now.Add(m.refreshDuration),
	}

	var err error
	pair.AccessToken, err = m.sign(m.claims(userID, email, TypeAccess, now, pair.AccessExpiresAt))
	if err != nil {
		return nil, err
	}
	pair.RefreshToken, err = m.sign(m.claims(userID, "", TypeRefresh, now, pair.RefreshExpiresAt))
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (m *Manager) claims(userID, email, typ string, now, exp time.Time) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: userID,
		Email:  email,
		Type:   typ,
	}
}

// ValidateToken parses and checks a token of any type.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuedAt())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	if m.isRevoked(claims) {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// ValidateAccessToken accepts only access tokens.
func (m *Manager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != TypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshTokens exchanges a refresh token for a new pair.
func (m *Manager) RefreshTokens(refreshToken, email string) (*TokenPair, *Claims, error) {
	claims, err := m.ValidateToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	if claims.Type != TypeRefresh {
		return nil, nil, ErrInvalidToken
	}

	pair, err := m.GenerateTokenPair(claims.UserID, email)
	if err != nil {
		return nil, nil, err
	}
	return pair, claims, nil
}

// RevokeUserTokens invalidates every token issued to userID so far.
func (m *Manager) RevokeUserTokens(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[userID] = m.now().Truncate(time.Millisecond)
}

func (m *Manager) isRevoked(claims *Claims) bool {
	m.mu.RLock()
	mark, ok := m.revoked[claims.UserID]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	if claims.IssuedAt == nil {
		return true
	}
	return claims.IssuedAt.Time.Before(mark)
}

// CleanupExpiredRevocations drops marks older than the refresh lifetime;
// no token they could reject is still valid.
func (m *Manager) CleanupExpiredRevocations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-m.refreshDuration)
	for userID, mark := range m.revoked {
		if mark.Before(cutoff) {
			delete(m.revoked, userID)
		}
	}
}

func (m *Manager) sign(claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}
