package secret

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("DISCORDOPS_A", "alpha")
	t.Setenv("DISCORDOPS_EMPTY", "")

	tests := []struct {
		in   string
		want string
	}{
		{"no vars", "no vars"},
		{"$DISCORDOPS_A", "alpha"},
		{"x-${DISCORDOPS_A}-y", "x-alpha-y"},
		{"${DISCORDOPS_EMPTY}", ""},
		{"cost: $$5", "cost: $5"},
		{"$$DISCORDOPS_A", "$DISCORDOPS_A"},
	}
	for _, tt := range tests {
		got, err := ExpandEnv(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ExpandEnv(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestExpandEnv_ReportsEveryMissingName(t *testing.T) {
	_, err := ExpandEnv("${DISCORDOPS_Z} $DISCORDOPS_Y ${DISCORDOPS_Z}")
	if !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("err = %v, want ErrMissingEnv", err)
	}
	if !strings.HasSuffix(err.Error(), ": DISCORDOPS_Y, DISCORDOPS_Z") {
		t.Errorf("err = %q", err)
	}
}
