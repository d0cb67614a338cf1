// Package normalize canonicalizes raw contact fields into comparable
// forms: lower-cased syntactically valid emails, E.164 phone numbers,
// and ISO 3166-1 alpha-2 country codes. Normalization is total: it never
// fails, and malformed values become absent or explicitly-unparsable
// field markers so one bad row can never abort a run.
package normalize

import (
	"context"
	"strings"

	"github.com/syncline/contactsync/pkg/contacts"
	"github.com/syncline/contactsync/pkg/geo"
)

// Normalizer canonicalizes raw contacts according to an explicit rule
// set. The zero value is not usable; construct with New.
type Normalizer struct {
	rules   *Rules
	locator geo.Locator
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLocator sets the geolocation provider used to resolve country
// hints that are not bare ISO codes.
func WithLocator(locator geo.Locator) Option {
	return func(n *Normalizer) {
		n.locator = locator
	}
}

// New creates a Normalizer. nil rules fall back to DefaultRules. When no
// locator is configured, the rules' static place table is used.
func New(rules *Rules, opts ...Option) *Normalizer {
	if rules == nil {
		rules = DefaultRules()
	}
	n := &Normalizer{rules: rules}
	for _, opt := range opts {
		opt(n)
	}
	if n.locator == nil && len(rules.Places) > 0 {
		n.locator = geo.NewStatic(rules.Places)
	}
	return n
}

// Contact normalizes one raw contact. It always returns exactly one
// NormalizedContact; every parse failure is encoded as an absent or
// unparsable field, never an error.
func (n *Normalizer) Contact(ctx context.Context, raw contacts.RawContact) contacts.NormalizedContact {
	country, city := n.Country(ctx, raw.CountryHint)

	region := country
	if region == "" {
		region = n.rules.DefaultRegion
	}
	phone, ok := n.Phone(raw.Phone, region)

	norm := contacts.NormalizedContact{
		SourceID:  strings.TrimSpace(raw.SourceID),
		Email:     n.Email(raw.Email),
		Phone:     phone,
		FirstName: strings.TrimSpace(raw.FirstName),
		LastName:  strings.TrimSpace(raw.LastName),
		Country:   country,
		City:      city,
		Address:   strings.TrimSpace(raw.Address),
		Industry:  strings.TrimSpace(raw.Industry),
		CreatedAt: raw.CreatedAt,
	}
	if !ok {
		norm.PhoneUnparsable = true
		norm.RawPhone = raw.Phone
	}
	return norm
}

// Contacts normalizes a sequence of raw contacts, preserving order.
func (n *Normalizer) Contacts(ctx context.Context, raws []contacts.RawContact) []contacts.NormalizedContact {
	normalized := make([]contacts.NormalizedContact, 0, len(raws))
	for _, raw := range raws {
		normalized = append(normalized, n.Contact(ctx, raw))
	}
	return normalized
}
