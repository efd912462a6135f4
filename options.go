package emailaddr

import "time"

// CacheOptions configures the hostname parse cache.
type CacheOptions struct {
	// TTL is how long a parsed domain is reused. Zero keeps entries forever. Default: 5m
	TTL time.Duration
	// MaxEntries bounds the cache size. Zero means unbounded. Default: 10000
	MaxEntries int
}

func defaultCacheOptions() CacheOptions {
	return CacheOptions{
		TTL:        5 * time.Minute,
		MaxEntries: 10000,
	}
}

// TypoOptions configures domain typo suggestions.
type TypoOptions struct {
	// Threshold is the Levenshtein distance threshold for typo detection. Default: 2
	Threshold int
	// Providers overrides the list of known provider domains.
	// Default: nil (built-in list of major providers)
	Providers []string
}

func defaultTypoOptions() TypoOptions {
	return TypoOptions{
		Threshold: 2,
	}
}

// ConcurrencyOptions configures concurrent processing for ValidateMany.
type ConcurrencyOptions struct {
	// Workers is the number of concurrent goroutines. Default: 5
	Workers int
}
