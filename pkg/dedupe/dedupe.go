// Package dedupe groups normalized contacts by identity key and merges
// each group into one canonical contact.
//
// The merge is deterministic: within a group, a field's canonical value
// is the first non-absent value in stable input order. Callers that want
// most-recent-wins semantics (the behavior of the system this replaces)
// sort their input by recency before deduplicating.
package dedupe

import (
	"sort"
	"strings"

	"github.com/syncline/contactsync/pkg/contacts"
	"github.com/syncline/contactsync/pkg/identity"
)

// Merge deduplicates normalized contacts into canonical contacts, one
// per distinct identity key, in order of each key's first appearance.
// Unresolvable records form singleton groups, so no input record is ever
// dropped. The total output count equals the number of distinct keys.
func Merge(in []contacts.NormalizedContact) []contacts.CanonicalContact {
	groups := make(map[contacts.Key]*contacts.CanonicalContact, len(in))
	order := make([]contacts.Key, 0, len(in))

	for _, norm := range in {
		key := identity.Key(norm)
		canon, seen := groups[key]
		if !seen {
			canon = &contacts.CanonicalContact{Key: key}
			groups[key] = canon
			order = append(order, key)
		}
		absorb(canon, norm)
	}

	merged := make([]contacts.CanonicalContact, 0, len(order))
	for _, key := range order {
		merged = append(merged, *groups[key])
	}
	return merged
}

// absorb folds one normalized contact into a canonical record. Fields
// already set keep their value; ties are therefore broken by input
// position, never by map iteration order.
func absorb(canon *contacts.CanonicalContact, norm contacts.NormalizedContact) {
	fill(&canon.Email, norm.Email)
	fill(&canon.Phone, norm.Phone)
	fill(&canon.FirstName, norm.FirstName)
	fill(&canon.LastName, norm.LastName)
	fill(&canon.Country, norm.Country)
	fill(&canon.City, norm.City)
	fill(&canon.Address, norm.Address)
	canon.Industry = unionIndustries(canon.Industry, norm.Industry)
	if canon.CreatedAt.IsZero() {
		canon.CreatedAt = norm.CreatedAt
	}
	if norm.SourceID != "" {
		canon.SourceIDs = append(canon.SourceIDs, norm.SourceID)
	}
}

func fill(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}

// unionIndustries merges two ";"-separated industry lists into the
// sorted union of their values.
func unionIndustries(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	set := make(map[string]struct{})
	for _, list := range []string{a, b} {
		for _, item := range strings.Split(list, ";") {
			if item = strings.TrimSpace(item); item != "" {
				set[item] = struct{}{}
			}
		}
	}
	union := make([]string, 0, len(set))
	for item := range set {
		union = append(union, item)
	}
	sort.Strings(union)
	return strings.Join(union, ";")
}
