package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Authenticator resolves request headers to an Identity.
//
// Authenticate returns ErrMissingCredentials when h carries no credential
// of the kind it handles, and one of the other rejection errors when a
// credential is present but refused. Any other error is an internal
// failure. Implementations must be safe for concurrent use.
type Authenticator interface {
	Name() string
	Authenticate(ctx context.Context, h http.Header) (*Identity, error)
}

// Rejected reports whether err refuses the caller, as opposed to an
// authenticator that could not do its job.
func Rejected(err error) bool {
	for _, sentinel := range rejections {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

var rejections = []error{
	ErrMissingCredentials,
	ErrInvalidCredentials,
	ErrTokenExpired,
	ErrTokenMalformed,
}

// Chain tries each authenticator in order. One that finds no credential
// is skipped; the first that finds one decides the outcome.
type Chain []Authenticator

// Name returns "chain".
func (c Chain) Name() string { return "chain" }

// Authenticate returns the first identity found, or ErrMissingCredentials
// when no member recognised a credential.
func (c Chain) Authenticate(ctx context.Context, h http.Header) (*Identity, error) {
	for _, a := range c {
		id, err := a.Authenticate(ctx, h)
		switch {
		case err == nil:
			return id, nil
		case errors.Is(err, ErrMissingCredentials):
			continue
		case Rejected(err):
			return nil, err
		default:
			return nil, fmt.Errorf("auth: %s: %w", a.Name(), err)
		}
	}
	return nil, ErrMissingCredentials
}

var _ Authenticator = Chain(nil)
