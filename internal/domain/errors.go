package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNoAdapters is returned when no adapter supports the requested country
	ErrNoAdapters = errors.New("no adapters available for country")

	// ErrMissingCredentials is returned when a required API key is not configured
	ErrMissingCredentials = errors.New("required credentials not configured")

	// ErrSourceUnavailable is returned when a backend could not be reached
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrExtractFailed is returned when no extraction stage produced usable data
	ErrExtractFailed = errors.New("extraction failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
