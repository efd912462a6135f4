package emailaddr

import "errors"

var (
	// ErrInvalidCacheOptions is returned when WithCache is called
	// with a negative TTL or MaxEntries.
	ErrInvalidCacheOptions = errors.New("emailaddr: CacheOptions requires non-negative TTL and MaxEntries")

	// ErrInvalidTypoOptions is returned when WithTypoSuggestions is called
	// with a negative Threshold.
	ErrInvalidTypoOptions = errors.New("emailaddr: TypoOptions requires a non-negative Threshold")
)
