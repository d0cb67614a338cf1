// Package hubspot implements the remote contact directory against the
// HubSpot CRM v3 contacts API. It is the only place that knows HubSpot's
// wire format; everything it returns is mapped onto the directory and
// error types the pipeline works with.
//
// The client doubles as the pipeline's input provider: Contacts extracts
// every contact flagged for collection, page by page, sorted by create
// date descending so the dedup merge keeps the most recent values.
package hubspot

import (
	"github.com/syncline/contactsync/internal/transport"
	"github.com/syncline/contactsync/pkg/constants"
)

// DefaultBaseURL is the HubSpot API host.
const DefaultBaseURL = "https://api.hubapi.com"

// collectProperty is the contact property that flags a record as a
// candidate for extraction.
const collectProperty = "allowed_to_collect"

// extractProperties is the property set requested from the search API,
// both for extraction and for reconciliation lookups. It must cover
// every property the pipeline writes: a field missing here reads back
// as absent, which makes the reconciler re-issue the same update on
// every run instead of converging.
var extractProperties = []string{
	"firstname", "lastname", "email", "raw_email", "phone",
	"country", "city", "address", "industry", "createdate",
}

// Client talks to the HubSpot CRM v3 contacts API.
type Client struct {
	baseURL    string
	http       *transport.Client
	pageSize   int
	batchLimit int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithPageSize overrides the extraction page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// New creates a HubSpot client authenticated with a private app token.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		http:       transport.New("hubspot", &transport.BearerAuth{Token: apiKey}),
		pageSize:   constants.DefaultPageSize,
		batchLimit: constants.DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BatchLimit implements directory.Directory. HubSpot's batch endpoints
// accept at most 100 inputs per call.
func (c *Client) BatchLimit() int {
	return c.batchLimit
}
