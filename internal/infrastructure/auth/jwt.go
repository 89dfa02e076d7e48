// Package auth verifies bearer tokens and turns them into an actor.
// Tokens are issued elsewhere; Issue exists for tools and tests.
package auth

import (
	"errors"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingTenantID  = errors.New("missing tenant_id in claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims are the custom claims carried by an access token
type Claims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// JWTService signs and verifies HS256 tokens
type JWTService struct {
	secret []byte
	issuer string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

// Issue signs a token for actor valid for ttl
func (s *JWTService) Issue(actor shared.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   actor.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID: actor.TenantID.String(),
		UserID:   actor.UserID.String(),
		Username: actor.Name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature, algorithm, issuer and validity window and returns
// the actor the token speaks for
func (s *JWTService) Verify(tokenString string) (shared.Actor, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return shared.Actor{}, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return shared.Actor{}, ErrTokenNotYetValid
	case err != nil:
		return shared.Actor{}, ErrInvalidToken
	}

	if claims.TenantID == "" {
		return shared.Actor{}, ErrMissingTenantID
	}
	if claims.UserID == "" {
		return shared.Actor{}, ErrMissingUserID
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return shared.Actor{}, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return shared.Actor{}, ErrInvalidToken
	}
	return shared.NewActor(tenantID, userID, claims.Username), nil
}
