package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEnvProvider(t *testing.T) {
	t.Setenv("DISCORDOPS_TEST_TOKEN", "abc")
	p := NewEnvProvider()

	got, err := p.Resolve(context.Background(), "DISCORDOPS_TEST_TOKEN")
	if err != nil || got != "abc" {
		t.Fatalf("Resolve() = %q, %v", got, err)
	}

	_, err = p.Resolve(context.Background(), "DISCORDOPS_TEST_UNSET")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve(unset) error = %v, want ErrNotFound", err)
	}
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "token"), []byte("  file-token\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	p := NewFileProvider(dir)
	got, err := p.Resolve(context.Background(), "token")
	if err != nil || got != "file-token" {
		t.Fatalf("Resolve(relative) = %q, %v", got, err)
	}

	got, err = NewFileProvider("").Resolve(context.Background(), filepath.Join(dir, "token"))
	if err != nil || got != "file-token" {
		t.Fatalf("Resolve(absolute) = %q, %v", got, err)
	}

	_, err = p.Resolve(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve(missing) error = %v, want ErrNotFound", err)
	}
}
