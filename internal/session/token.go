package session

import (
	"errors"
	"time"

	"github.com/MikhailRaia/shortener-form/internal/generator"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims identify one page-view session.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies session cookies with HS256.
type TokenService struct {
	secretKey []byte
	lifetime  time.Duration
	now       func() time.Time
}

func NewTokenService(secretKey string, lifetime time.Duration) *TokenService {
	return &TokenService{
		secretKey: []byte(secretKey),
		lifetime:  lifetime,
		now:       time.Now,
	}
}

func (s *TokenService) GenerateToken(sessionID string) (string, error) {
	now := s.now()
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// NeedsRefresh reports whether a valid token is past half its lifetime
// and should be re-issued to keep the session alive.
func (s *TokenService) NeedsRefresh(claims *Claims) bool {
	if claims.IssuedAt == nil {
		return true
	}
	return s.now().Sub(claims.IssuedAt.Time) >= s.lifetime/2
}

// NewSessionID returns a random URL-safe identifier.
func NewSessionID() (string, error) {
	return generator.GenerateID(16)
}
