package domain

import "time"

// Default configuration values
const (
	DefaultUpstreamTimeout = 5 * time.Second

	DefaultNearTermTTL  = 2 * time.Minute
	DefaultFarFutureTTL = 1 * time.Hour
	DefaultNearTermDays = 7 // today..+7 days use the near-term TTL

	DefaultCacheCapacity = 400 // ~13 months of daily granularity
	DefaultMaxStaleAge   = 24 * time.Hour

	DefaultSnapshotTimeout = 2 * time.Second

	DefaultMaxRetries     = 2
	DefaultInitialBackoff = 200 * time.Millisecond
	DefaultMaxBackoff     = 2 * time.Second

	DefaultMaxConcurrentFetches = 10
)

// Calendar constants
const (
	DaysInWeek = 7
)

// Time format constants
const (
	TimeFormat  = "15:04"      // HH:MM
	DateFormat  = "2006-01-02" // YYYY-MM-DD
	MonthFormat = "2006-01"
)
