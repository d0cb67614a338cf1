// Package geo resolves free-form place strings ("Paris", "Germany",
// "NYC") to ISO 3166-1 alpha-2 country codes. The pipeline uses the
// result only to seed phone-parsing region defaults, so every lookup
// failure degrades to "no country" rather than an error that aborts
// the run.
package geo

import (
	"context"
	"strings"
)

// Locator resolves a place string to an ISO alpha-2 country code.
// An unknown place yields ("", nil); errors are reserved for transport
// failures and callers are expected to degrade gracefully on both.
type Locator interface {
	Lookup(ctx context.Context, place string) (string, error)
}

// Static is a Locator backed by a fixed place → country table, typically
// loaded from the normalization rules file.
type Static struct {
	places map[string]string
}

// NewStatic creates a Static locator. Keys are matched case-insensitively.
func NewStatic(places map[string]string) *Static {
	normalized := make(map[string]string, len(places))
	for place, country := range places {
		normalized[strings.ToLower(strings.TrimSpace(place))] = strings.ToUpper(country)
	}
	return &Static{places: normalized}
}

// Lookup implements Locator.
func (s *Static) Lookup(_ context.Context, place string) (string, error) {
	return s.places[strings.ToLower(strings.TrimSpace(place))], nil
}

// Chain tries each locator in order and returns the first hit.
type Chain []Locator

// Lookup implements Locator. Transport errors from one locator do not
// stop the chain; the last error is returned only if no locator resolves
// the place.
func (c Chain) Lookup(ctx context.Context, place string) (string, error) {
	var lastErr error
	for _, locator := range c {
		code, err := locator.Lookup(ctx, place)
		if err != nil {
			lastErr = err
			continue
		}
		if code != "" {
			return code, nil
		}
	}
	return "", lastErr
}
