package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken     = errors.New("missing authentication token")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// Claims are the fields Supabase puts in its access tokens.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTConfig holds HS256 validation settings.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// JWTVerifier validates Supabase access tokens locally with the project's
// JWT secret.
type JWTVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

func NewJWTVerifier(cfg JWTConfig) (*JWTVerifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("secret key required for HS256")
	}
	return &JWTVerifier{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}, nil
}

// Verify parses and validates the token and returns the session it carries.
func (v *JWTVerifier) Verify(token string) (Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return Session{}, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Session{}, ErrExpiredToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return Session{}, ErrInvalidSignature
		}
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Session{}, ErrInvalidClaims
	}
	if claims.Subject == "" {
		return Session{}, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}

	s := Session{UserID: claims.Subject, Email: claims.Email}
	if claims.Role != "" {
		s.Roles = []string{claims.Role}
	}
	return s, nil
}
