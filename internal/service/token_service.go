package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/examsentry/integrity-backend/internal/config"
)

// TokenType distinguishes the two callers of this service.
type TokenType string

const (
	// TokenTypeClient is presented by the desktop exam client.
	TokenTypeClient TokenType = "client"
	// TokenTypeProctor is presented by the proctor dashboard.
	TokenTypeProctor TokenType = "proctor"
)

// Claims are the JWT claims carried by client and proctor tokens.
type Claims struct {
	TokenType TokenType `json:"token_type"`
	SubjectID int       `json:"subject_id"`
	jwt.RegisteredClaims
}

// TokenService mints and validates the HMAC tokens guarding the monitoring
// and proctor surfaces. Identity itself is owned by the platform's auth
// service; this only verifies that a caller was issued a token.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret: []byte(cfg.TokenSecret),
		expiry: cfg.TokenExpiry,
	}
}

// Enabled reports whether token enforcement is configured.
func (s *TokenService) Enabled() bool {
	return len(s.secret) > 0
}

// Mint issues a signed token of the given type for subjectID.
func (s *TokenService) Mint(tokenType TokenType, subjectID int) (string, error) {
	if !s.Enabled() {
		return "", errors.New("TOKEN_SECRET is not configured")
	}

	now := time.Now()
	claims := &Claims{
		TokenType: tokenType,
		SubjectID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate parses and verifies a token string.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
