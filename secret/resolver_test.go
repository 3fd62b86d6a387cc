package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type mapProvider map[string]string

func (mapProvider) Name() string { return "vault" }

func (m mapProvider) Resolve(_ context.Context, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		want Ref
		ok   bool
	}{
		{"secretref:env:TOKEN", Ref{"env", "TOKEN"}, true},
		{"secretref:file:/run/secrets/a:b", Ref{"file", "/run/secrets/a:b"}, true},
		{"secretref:env:", Ref{}, false},
		{"secretref::TOKEN", Ref{}, false},
		{"secretref:env", Ref{}, false},
		{"plain", Ref{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseRef(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseRef(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
		if ok && got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}

func TestResolver_Resolve(t *testing.T) {
	t.Setenv("DISCORDOPS_TEST_KEY", "bot_token")
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bot_token"), []byte("from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	r := NewResolver(NewEnvProvider(), NewFileProvider(dir), mapProvider{"db": "hunter2", "blank": ""})
	ctx := context.Background()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"literal", "plain value", "plain value", nil},
		{"whole reference", "secretref:vault:db", "hunter2", nil},
		{"embedded references", "Bot secretref:vault:db and secretref:vault:db", "Bot hunter2 and hunter2", nil},
		{"env expanded before lookup", "secretref:file:${DISCORDOPS_TEST_KEY}", "from-file", nil},
		{"unknown provider", "secretref:aws:db", "", ErrProviderNotRegistered},
		{"missing key", "secretref:vault:nope", "", ErrNotFound},
		{"empty value", "secretref:vault:blank", "", ErrEmpty},
		{"unset variable", "${DISCORDOPS_TEST_UNSET}", "", ErrMissingEnv},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolver_ResolveMap(t *testing.T) {
	r := NewResolver(mapProvider{"a": "1"})
	ctx := context.Background()

	got, err := r.ResolveMap(ctx, map[string]string{"x": "secretref:vault:a", "y": "lit"})
	if err != nil {
		t.Fatal(err)
	}
	if got["x"] != "1" || got["y"] != "lit" {
		t.Errorf("ResolveMap() = %v", got)
	}

	if got, err := r.ResolveMap(ctx, nil); got != nil || err != nil {
		t.Errorf("ResolveMap(nil) = %v, %v", got, err)
	}

	_, err = r.ResolveMap(ctx, map[string]string{"guild-1": "secretref:vault:missing"})
	if !errors.Is(err, ErrNotFound) || err.Error() != "guild-1: secret: not found" {
		t.Errorf("err = %v", err)
	}
}

func TestResolver_Token(t *testing.T) {
	t.Setenv("DISCORDOPS_TEST_TOKEN", "Bot raw-token")
	r := NewResolver(NewEnvProvider())
	ctx := context.Background()

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"bot  spaced ", "spaced"},
		{"Bearer oauth", "oauth"},
		{"${DISCORDOPS_TEST_TOKEN}", "raw-token"},
		{"secretref:env:DISCORDOPS_TEST_TOKEN", "raw-token"},
	}
	for _, tt := range tests {
		got, err := r.Token(ctx, tt.in)
		if err != nil || got != tt.want {
			t.Errorf("Token(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := r.Token(ctx, "  "); !errors.Is(err, ErrEmpty) {
		t.Errorf("Token(blank) error = %v, want ErrEmpty", err)
	}
	if _, err := r.Token(ctx, "${DISCORDOPS_TEST_UNSET}"); !errors.Is(err, ErrMissingEnv) {
		t.Errorf("Token(unset) error = %v, want ErrMissingEnv", err)
	}
}
