package domain

import (
	"context"
	"errors"
)

var (
	// ErrNoUserProfile is returned when recommendations are requested before onboarding
	ErrNoUserProfile = errors.New("no user profile set")

	// ErrProviderNotConfigured is returned when a provider has no credential
	ErrProviderNotConfigured = errors.New("provider not configured")

	// ErrProviderFailure is returned when a provider answers with a non-2xx status or a bad payload
	ErrProviderFailure = errors.New("provider request failed")

	// ErrProviderTimeout is returned when a provider does not answer within its budget
	ErrProviderTimeout = errors.New("provider request timed out")

	// ErrMalformedResponse is returned when a provider payload cannot be parsed
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)

// IsFallbackError reports whether err is one of the non-fatal provider errors
// (missing credential, provider failure, timeout) that move resolution to the next tier.
func IsFallbackError(err error) bool {
	return errors.Is(err, ErrProviderNotConfigured) ||
		errors.Is(err, ErrProviderFailure) ||
		errors.Is(err, ErrProviderTimeout) ||
		errors.Is(err, ErrMalformedResponse) ||
		errors.Is(err, context.DeadlineExceeded)
}
