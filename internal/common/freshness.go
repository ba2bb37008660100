package common

import "time"

// Freshness TTLs for cached analysis artifacts
const (
	FreshnessReport       = 6 * time.Hour
	FreshnessQuote        = 15 * time.Minute
	FreshnessFundamentals = 7 * 24 * time.Hour // statements change quarterly at most
	FreshnessHistory      = 24 * time.Hour
	FreshnessHeadlines    = 6 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
