package geo

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/syncline/contactsync/internal/transport"
	"github.com/syncline/contactsync/pkg/constants"
	"github.com/syncline/contactsync/pkg/errors"
	"github.com/syncline/contactsync/pkg/logging"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"

// Nominatim is a Locator backed by the OpenStreetMap Nominatim geocoder.
// Transient failures are retried a bounded number of times; exhausting
// the budget returns the last error so callers can log and degrade.
type Nominatim struct {
	baseURL string
	client  *transport.Client
	retries int
	delay   time.Duration
}

// NewNominatim creates a Nominatim locator against the given base URL,
// or DefaultNominatimURL when empty.
func NewNominatim(baseURL string) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &Nominatim{
		baseURL: baseURL,
		client:  transport.New("nominatim", &transport.NoAuth{}),
		retries: constants.GeocodeRetries,
		delay:   2 * time.Second,
	}
}

// nominatimPlace is the subset of the Nominatim response we read.
type nominatimPlace struct {
	Address struct {
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

// Lookup implements Locator.
func (n *Nominatim) Lookup(ctx context.Context, place string) (string, error) {
	place = strings.Trim(strings.TrimSpace(place), "'")
	if place == "" {
		return "", nil
	}

	query := url.Values{}
	query.Set("q", place)
	query.Set("format", "json")
	query.Set("addressdetails", "1")
	query.Set("limit", "1")
	endpoint := n.baseURL + "?" + query.Encode()

	var lastErr error
	for attempt := 0; attempt < n.retries; attempt++ {
		lookupCtx, cancel := context.WithTimeout(ctx, constants.GeocodeTimeout)
		var results []nominatimPlace
		err := n.client.GetJSON(lookupCtx, endpoint, &results)
		cancel()

		if err == nil {
			if len(results) == 0 {
				return "", nil
			}
			return strings.ToUpper(results[0].Address.CountryCode), nil
		}

		lastErr = err
		if !errors.IsRetryable(err) {
			break
		}
		logging.Warn().
			Err(err).
			Str("place", place).
			Int("attempt", attempt+1).
			Msg("Geocode attempt failed, retrying")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(n.delay):
		}
	}
	return "", lastErr
}
