package discord

import (
	"fmt"
	"strconv"
	"time"
)

// DiscordEpoch is the first millisecond of 2015, the snowflake time origin.
const DiscordEpoch int64 = 1420070400000

// IsValidID reports whether s looks like a Discord snowflake: 17 to 19
// ASCII digits.
func IsValidID(s string) bool {
	if len(s) < 17 || len(s) > 19 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// SnowflakeTime returns the creation time encoded in a valid snowflake.
func SnowflakeTime(id string) (time.Time, error) {
	if !IsValidID(id) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return time.UnixMilli(int64(n>>22) + DiscordEpoch).UTC(), nil
}

// checkIDs validates every id, naming the first bad one.
func checkIDs(ids ...string) error {
	for _, id := range ids {
		if !IsValidID(id) {
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}
	return nil
}
