package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() Claims {
	return Claims{
		Email: "ada@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestJWTVerifier(t *testing.T) {
	v, err := NewJWTVerifier(JWTConfig{Secret: testSecret, Audience: "authenticated"})
	require.NoError(t, err)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongAud := validClaims()
	wrongAud.Audience = jwt.ClaimStrings{"service"}

	noSubject := validClaims()
	noSubject.Subject = ""

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid", signToken(t, testSecret, validClaims()), nil},
		{"valid with bearer prefix", "Bearer " + signToken(t, testSecret, validClaims()), nil},
		{"empty", "", ErrMissingToken},
		{"expired", signToken(t, testSecret, expired), ErrExpiredToken},
		{"wrong secret", signToken(t, "another-secret-another-secret-123456", validClaims()), ErrInvalidSignature},
		{"wrong audience", signToken(t, testSecret, wrongAud), ErrInvalidToken},
		{"missing subject", signToken(t, testSecret, noSubject), ErrInvalidClaims},
		{"garbage", "abc.def.ghi", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := v.Verify(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-123", s.UserID)
			assert.Equal(t, "ada@example.com", s.Email)
			assert.Equal(t, []string{"authenticated"}, s.Roles)
		})
	}
}

func TestNewJWTVerifier_RequiresSecret(t *testing.T) {
	_, err := NewJWTVerifier(JWTConfig{})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	fail := VerifierFunc(func(string) (Session, error) { return Session{}, ErrInvalidToken })
	ok := VerifierFunc(func(string) (Session, error) { return Session{UserID: "u"}, nil })
	expired := VerifierFunc(func(string) (Session, error) { return Session{}, ErrExpiredToken })

	s, err := Chain{fail, ok}.Verify("t")
	require.NoError(t, err)
	assert.Equal(t, "u", s.UserID)

	_, err = Chain{expired, ok}.Verify("t")
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = Chain{}.Verify("t")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestSession(t *testing.T) {
	s := Session{UserID: "owner"}

	assert.True(t, s.Owns("owner"))
	assert.False(t, s.Owns("other"))
	assert.False(t, Anonymous.Owns(""))
	assert.NoError(t, s.RequireUser())
	assert.True(t, pkgerrors.IsUnauthorized(Anonymous.RequireUser()))

	ctx := WithSession(context.Background(), s)
	assert.Equal(t, s, SessionFrom(ctx))
	assert.True(t, SessionFrom(context.Background()).IsAnonymous())
}
