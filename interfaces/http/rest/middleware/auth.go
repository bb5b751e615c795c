package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/pkg/auth"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// Authenticate rejects requests without a valid bearer token and stores
// the verified session on the request context.
func Authenticate(verifier auth.Verifier, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				errHandler.Handle(w, r, pkgerrors.NewUnauthorizedError("missing authentication token"))
				return
			}

			session, err := verifier.Verify(token)
			if err != nil {
				logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("path", r.URL.Path),
				)
				errHandler.Handle(w, r, unauthorized(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		})
	}
}

// OptionalAuth attaches a session when a valid token is present and lets
// the request through anonymously otherwise.
func OptionalAuth(verifier auth.Verifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractToken(r); token != "" {
				if session, err := verifier.Verify(token); err == nil {
					r = r.WithContext(auth.WithSession(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return pkgerrors.NewUnauthorizedError("token has expired")
	default:
		return pkgerrors.NewUnauthorizedError("invalid token")
	}
}

// extractToken reads the bearer token from the Authorization header or the
// auth_token cookie.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}
