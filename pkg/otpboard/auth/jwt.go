package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrUnauthorized = errors.New("unauthorized")
)

// DefaultSessionDuration is how long a dashboard session token stays valid
const DefaultSessionDuration = 7 * 24 * time.Hour

// DashboardSubject is the subject of every dashboard session token
const DashboardSubject = "dashboard"

// Claims represents the JWT claims
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager issues and validates dashboard session tokens
type TokenManager struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

// NewTokenManager creates a TokenManager signing with secret
func NewTokenManager(secret string, duration time.Duration) *TokenManager {
	if duration <= 0 {
		duration = DefaultSessionDuration
	}
	return &TokenManager{secret: []byte(secret), duration: duration, now: time.Now}
}

// Duration returns the lifetime of issued tokens
func (m *TokenManager) Duration() time.Duration {
	return m.duration
}

// GenerateToken creates a new signed session token
func (m *TokenManager) GenerateToken() (string, error) {
	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   DashboardSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "otpboard",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken validates a session token and returns the claims
func (m *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject != DashboardSubject {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
