package auth

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds the signing secrets and token lifetimes. It is loaded once at
// startup and never mutated afterwards.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// LoadConfig reads the token configuration from the environment. The access
// and refresh secrets must both be set and must differ: compromising one key
// must not compromise the other.
func LoadConfig() (Config, error) {
	access := os.Getenv("JWT_ACCESS_SECRET")
	refresh := os.Getenv("JWT_REFRESH_SECRET")

	if access == "" || refresh == "" {
		return Config{}, errors.New("missing JWT_ACCESS_SECRET or JWT_REFRESH_SECRET env vars")
	}
	if access == refresh {
		return Config{}, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be distinct")
	}

	return Config{
		AccessSecret:  []byte(access),
		RefreshSecret: []byte(refresh),
		AccessTTL:     accessTTL(),
		RefreshTTL:    refreshTTL(),
	}, nil
}

func accessTTL() time.Duration {
	minStr := os.Getenv("ACCESS_TOKEN_TTL_MINUTES")
	min, _ := strconv.Atoi(minStr)
	if min <= 0 {
		min = 15
	}
	return time.Duration(min) * time.Minute
}

func refreshTTL() time.Duration {
	dStr := os.Getenv("REFRESH_TOKEN_TTL_DAYS")
	days, _ := strconv.Atoi(dStr)
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}
