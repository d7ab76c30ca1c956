package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the decoded portal identity carried by an access token.
type Claims struct {
	UserID    string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func New(secret, issuer string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

type jwtClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (m *Manager) Issue(userID, role string) (string, error) {
	now := time.Now().UTC()
	cl := jwtClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(m.secret)
}

// Parse validates the signature and expiry and returns the claims.
func (m *Manager) Parse(raw string) (Claims, error) {
	var out jwtClaims
	tkn, err := jwt.ParseWithClaims(raw, &out, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}
	if !tkn.Valid {
		return Claims{}, jwt.ErrTokenInvalidClaims
	}

	claims := Claims{
		UserID: out.UserID,
		Role:   out.Role,
	}
	if out.IssuedAt != nil {
		claims.IssuedAt = out.IssuedAt.Time
	}
	if out.ExpiresAt != nil {
		claims.ExpiresAt = out.ExpiresAt.Time
	}
	return claims, nil
}
