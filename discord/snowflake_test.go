package discord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"123456789012345678", true},
		{"12345678901234567", true},
		{"1234567890123456789", true},
		{"12345", false},
		{"12345678901234567890", false},
		{"12345678901234567a", false},
		{"", false},
		{" 23456789012345678", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidID(tt.id), "IsValidID(%q)", tt.id)
	}
}

func TestSnowflakeTime(t *testing.T) {
	// Example from Discord's reference documentation.
	ts, err := SnowflakeTime("175928847299117063")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2016, 4, 30, 11, 18, 25, 796_000_000, time.UTC), ts)

	_, err = SnowflakeTime("abc")
	require.ErrorIs(t, err, ErrInvalidID)
}
