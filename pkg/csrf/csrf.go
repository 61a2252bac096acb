package csrf

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenType = "csrf"

var ErrInvalidToken = errors.New("invalid or expired form token")

// Claims represents CSRF token claims structure
type Claims struct {
	Nonce string `json:"nonce"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// Manager issues and verifies form tokens.
// A token is only valid together with the nonce it was issued for; the
// nonce travels in a cookie, the token in a hidden form field.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates new CSRF manager
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// NewNonce returns a fresh random nonce for the cookie.
func (m *Manager) NewNonce() string {
	return uuid.NewString()
}

// TTL is the lifetime of issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Generate signs a token bound to nonce.
func (m *Manager) Generate(nonce string) (string, error) {
	now := m.now()
	claims := Claims{
		Nonce: nonce,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign csrf token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, expiry, type and nonce binding.
func (m *Manager) Validate(tokenString, nonce string) error {
	if tokenString == "" || nonce == "" {
		return ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}

	if claims.Type != tokenType || claims.Nonce != nonce {
		return ErrInvalidToken
	}

	return nil
}
