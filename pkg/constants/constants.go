// Package constants provides shared constants used throughout the
// contactsync codebase: timeouts, batch limits, retry bounds, and other
// values that should be consistent across the application.
package constants

import "time"

// Timeout constants.
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the
	// remote directory.
	DefaultHTTPTimeout = 30 * time.Second

	// RunTimeout is the default timeout for a full pipeline run.
	RunTimeout = 30 * time.Minute

	// GeocodeTimeout is the timeout for a single geolocation lookup.
	GeocodeTimeout = 5 * time.Second
)

// Batch and paging limits.
const (
	// DefaultBatchSize is the number of operations per batch submission.
	// The HubSpot batch API accepts at most 100 inputs per call.
	DefaultBatchSize = 100

	// DefaultPageSize is the page size used when extracting contacts
	// from the remote directory.
	DefaultPageSize = 100

	// MaxConcurrentRequests bounds concurrent directory lookups and
	// in-flight batch submissions.
	MaxConcurrentRequests = 5
)

// Retry and backoff bounds.
const (
	// MaxRateLimitRetries is the retry budget for a rate-limited batch.
	MaxRateLimitRetries = 5

	// MaxTransientRetries is the smaller retry budget for timeouts and
	// transient unavailability.
	MaxTransientRetries = 3

	// RetryBackoff is the base backoff duration, doubled per attempt.
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff caps the exponential backoff.
	MaxRetryBackoff = 30 * time.Second

	// GeocodeRetries is the retry budget for geolocation lookups.
	GeocodeRetries = 3
)
