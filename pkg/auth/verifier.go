package auth

import "errors"

// Verifier turns a bearer token into a Session.
type Verifier interface {
	Verify(token string) (Session, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(token string) (Session, error)

func (f VerifierFunc) Verify(token string) (Session, error) { return f(token) }

// Chain tries each verifier in order and returns the first success. Expired
// tokens stop the chain.
type Chain []Verifier

func (c Chain) Verify(token string) (Session, error) {
	err := ErrInvalidToken
	for _, v := range c {
		s, verr := v.Verify(token)
		if verr == nil {
			return s, nil
		}
		if errors.Is(verr, ErrExpiredToken) {
			return Session{}, verr
		}
		err = verr
	}
	return Session{}, err
}
