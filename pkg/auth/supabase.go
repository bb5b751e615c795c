package auth

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// SupabaseVerifier asks the Supabase auth service who owns a token. It is
// used when no JWT secret is configured.
type SupabaseVerifier struct {
	client *supabase.Client
}

func NewSupabaseVerifier(client *supabase.Client) *SupabaseVerifier {
	return &SupabaseVerifier{client: client}
}

func (v *SupabaseVerifier) Verify(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrMissingToken
	}
	user, err := v.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return Session{
		UserID: user.ID.String(),
		Email:  user.Email,
		Roles:  []string{user.Role},
	}, nil
}
