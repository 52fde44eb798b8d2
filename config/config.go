package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

// LoadEnv loads variables from a .env file if one is present. Real
// environment variables always win over file values.
func LoadEnv() {
	loadOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// Fee rates are expressed in basis points so the settlement arithmetic stays
// in integers end to end.
const (
	DefaultPlatformFeeBps = 1000 // 10%
	DefaultPayoutFeeBps   = 500  // 5%
)

// PlatformFeeBps returns the platform's cut of each payment, in basis points.
func PlatformFeeBps() int64 {
	return bpsFromEnv("PLATFORM_FEE_BPS", DefaultPlatformFeeBps)
}

// PayoutFeeBps returns the fee withheld from provider payouts, in basis points.
func PayoutFeeBps() int64 {
	return bpsFromEnv("PAYOUT_FEE_BPS", DefaultPayoutFeeBps)
}

func bpsFromEnv(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	bps, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || bps < 0 || bps > 10000 {
		return fallback
	}
	return bps
}
