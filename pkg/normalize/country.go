package normalize

import (
	"context"
	"strings"

	"golang.org/x/text/language"

	"github.com/syncline/contactsync/pkg/logging"
)

// Country resolves a free-form country/city hint to an ISO 3166-1
// alpha-2 code. Bare region codes ("us", "DEU", "250") are parsed
// directly; anything else ("Paris", "France") goes through the locator.
// The second return is the hint retained as a city value when it was a
// place name rather than a code.
func (n *Normalizer) Country(ctx context.Context, hint string) (string, string) {
	hint = strings.Trim(strings.TrimSpace(hint), "'\"")
	if hint == "" {
		return "", ""
	}

	if code := parseRegionCode(hint); code != "" {
		return code, ""
	}

	if n.locator == nil {
		return "", hint
	}
	code, err := n.locator.Lookup(ctx, hint)
	if err != nil {
		// No default region is better than a failed run.
		logging.Ctx(ctx).Warn().Err(err).Str("place", hint).Msg("Country lookup failed")
		return "", hint
	}
	return code, hint
}

// parseRegionCode parses bare ISO region codes (alpha-2, alpha-3, or
// numeric). Free-form names are rejected so they fall through to the
// locator.
func parseRegionCode(hint string) string {
	if len(hint) < 2 || len(hint) > 3 {
		return ""
	}
	region, err := language.ParseRegion(hint)
	if err != nil || !region.IsCountry() {
		return ""
	}
	return region.String()
}
