package secret

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const refPrefix = "secretref:"

// Ref names a secret held by a provider, written
// "secretref:<provider>:<key>".
type Ref struct {
	Provider string
	Key      string
}

func (r Ref) String() string { return refPrefix + r.Provider + ":" + r.Key }

// ParseRef parses s as a complete reference.
func ParseRef(s string) (Ref, bool) {
	rest, ok := strings.CutPrefix(s, refPrefix)
	if !ok {
		return Ref{}, false
	}
	provider, key, ok := strings.Cut(rest, ":")
	if !ok || provider == "" || key == "" {
		return Ref{}, false
	}
	return Ref{Provider: provider, Key: key}, true
}

var embeddedRef = regexp.MustCompile(`secretref:[^:\s]+:\S+`)

// Resolver turns configuration values into plaintext using a fixed set of
// providers.
type Resolver struct {
	providers map[string]Provider
}

// NewResolver creates a resolver. A later provider replaces an earlier
// one with the same name.
func NewResolver(providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Resolve expands environment variables in value, then substitutes every
// reference it contains. A reference resolving to "" is ErrEmpty.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnv(value)
	if err != nil {
		return "", err
	}

	var firstErr error
	out := embeddedRef.ReplaceAllStringFunc(expanded, func(match string) string {
		if firstErr != nil {
			return ""
		}
		ref, _ := ParseRef(match)
		v, err := r.lookup(ctx, ref)
		if err != nil {
			firstErr = err
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// ResolveMap resolves every value of m into a new map. Keys are reported
// in errors; values never are.
func (r *Resolver) ResolveMap(ctx context.Context, m map[string]string) (map[string]string, error) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		resolved, err := r.Resolve(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = resolved
	}
	return out, nil
}

// Token resolves a Discord token. A leading "Bot " or "Bearer " scheme is
// dropped, since the client adds its own.
func (r *Resolver) Token(ctx context.Context, value string) (string, error) {
	tok, err := r.Resolve(ctx, strings.TrimSpace(value))
	if err != nil {
		return "", err
	}
	tok = strings.TrimSpace(tok)
	for _, scheme := range []string{"Bot ", "Bearer "} {
		if len(tok) > len(scheme) && strings.EqualFold(tok[:len(scheme)], scheme) {
			tok = strings.TrimSpace(tok[len(scheme):])
			break
		}
	}
	if tok == "" {
		return "", ErrEmpty
	}
	return tok, nil
}

func (r *Resolver) lookup(ctx context.Context, ref Ref) (string, error) {
	p, ok := r.providers[ref.Provider]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrProviderNotRegistered, ref.Provider)
	}
	v, err := p.Resolve(ctx, ref.Key)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%w: %s:%s", ErrEmpty, ref.Provider, ref.Key)
	}
	return v, nil
}
