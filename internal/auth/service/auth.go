package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned when the token's validity window has elapsed
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken is returned for any other validation failure
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the payload of an access token.
// RegisteredClaims.ID carries the token id that is persisted for revocation.
type Claims struct {
	UserID int `json:"user_id"`
	Role   int `json:"role"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed access token together with its id and expiry
type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// TokenGenerator handles JWT token generation and validation
type TokenGenerator struct {
	secret            string
	issuer            string
	accessTokenExpiry time.Duration
	now               func() time.Time
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret, issuer string, accessExpiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:            secret,
		issuer:            issuer,
		accessTokenExpiry: accessExpiry,
		now:               time.Now,
	}
}

// GenerateAccessToken creates a signed access token with a fresh token id
func (tg *TokenGenerator) GenerateAccessToken(userID, role int) (*IssuedToken, error) {
	now := tg.now()
	expiresAt := now.Add(tg.accessTokenExpiry)
	tokenID := uuid.NewString()

	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Issuer:    tg.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(tg.secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &IssuedToken{Token: signed, TokenID: tokenID, ExpiresAt: expiresAt.Truncate(time.Second)}, nil
}

// ValidateAccessToken parses and validates a token and returns its claims.
// Expired tokens yield ErrTokenExpired, everything else ErrInvalidToken.
func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(tg.secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tg.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tg.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.ID == "" || claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing token id or user id", ErrInvalidToken)
	}

	return claims, nil
}
