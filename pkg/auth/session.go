// Package auth identifies the caller. The mind map core never reads user
// identity; it is handed an explicit Session by whatever hosts it.
package auth

import (
	"context"

	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// Session is the authenticated caller of an operation.
type Session struct {
	UserID string
	Email  string
	Roles  []string
}

// Anonymous is the session used for public read-only access such as share
// links.
var Anonymous = Session{}

func (s Session) IsAnonymous() bool {
	return s.UserID == ""
}

// Owns reports whether the session may mutate a document owned by ownerID.
func (s Session) Owns(ownerID string) bool {
	return !s.IsAnonymous() && s.UserID == ownerID
}

// RequireUser returns UNAUTHORIZED for anonymous sessions.
func (s Session) RequireUser() error {
	if s.IsAnonymous() {
		return pkgerrors.NewUnauthorizedError("sign in required")
	}
	return nil
}

type contextKey struct{}

// WithSession stores the session on ctx for HTTP handlers.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// SessionFrom returns the session on ctx, or Anonymous.
func SessionFrom(ctx context.Context) Session {
	if s, ok := ctx.Value(contextKey{}).(Session); ok {
		return s
	}
	return Anonymous
}
