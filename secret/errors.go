package secret

import "errors"

var (
	// ErrProviderNotRegistered is returned for a reference to an unknown
	// provider.
	ErrProviderNotRegistered = errors.New("secret: provider not registered")

	// ErrNotFound is returned when a provider has no value for a reference.
	ErrNotFound = errors.New("secret: not found")

	// ErrEmpty is returned in strict mode when a secret resolves to "".
	ErrEmpty = errors.New("secret: empty value")

	// ErrMissingEnv is returned when ${VAR} names an unset variable.
	ErrMissingEnv = errors.New("secret: missing required environment variables")
)
