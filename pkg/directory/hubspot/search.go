package hubspot

import (
	"context"
	"strings"
	"time"

	"github.com/syncline/contactsync/pkg/contacts"
	"github.com/syncline/contactsync/pkg/directory"
	"github.com/syncline/contactsync/pkg/logging"
)

// Search API wire types.

type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups,omitempty"`
	Sorts        []searchSort  `json:"sorts,omitempty"`
	Properties   []string      `json:"properties,omitempty"`
	Limit        int           `json:"limit"`
	After        string        `json:"after,omitempty"`
}

type filterGroup struct {
	Filters []filter `json:"filters"`
}

type filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type searchSort struct {
	PropertyName string `json:"propertyName"`
	Direction    string `json:"direction"`
}

type searchResponse struct {
	Total   int            `json:"total"`
	Results []searchResult `json:"results"`
	Paging  *paging        `json:"paging,omitempty"`
}

type searchResult struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type paging struct {
	Next *pagingNext `json:"next,omitempty"`
}

type pagingNext struct {
	After string `json:"after"`
}

func (c *Client) searchURL() string {
	return c.baseURL + "/crm/v3/objects/contacts/search"
}

// search runs one search request and maps the results.
func (c *Client) search(ctx context.Context, filters []filter) ([]directory.Contact, error) {
	req := searchRequest{
		FilterGroups: []filterGroup{{Filters: filters}},
		Properties:   extractProperties,
		Limit:        c.pageSize,
	}
	var resp searchResponse
	if err := c.http.PostJSON(ctx, c.searchURL(), req, &resp); err != nil {
		return nil, err
	}

	found := make([]directory.Contact, 0, len(resp.Results))
	for _, result := range resp.Results {
		found = append(found, directory.Contact{
			ID:         contacts.RemoteID(result.ID),
			Properties: result.Properties,
		})
	}
	return found, nil
}

// FindByEmail implements directory.Directory.
func (c *Client) FindByEmail(ctx context.Context, email string) ([]directory.Contact, error) {
	return c.search(ctx, []filter{
		{PropertyName: contacts.PropEmail, Operator: "EQ", Value: email},
	})
}

// FindByPhone implements directory.Directory.
func (c *Client) FindByPhone(ctx context.Context, phone string) ([]directory.Contact, error) {
	return c.search(ctx, []filter{
		{PropertyName: contacts.PropPhone, Operator: "EQ", Value: phone},
	})
}

// FindByName implements directory.Directory. HubSpot property matching
// is case-insensitive, so the lower-cased name splits directly into the
// first/last filters.
func (c *Client) FindByName(ctx context.Context, fullName, country string) ([]directory.Contact, error) {
	first, last := splitName(fullName)
	filters := []filter{
		{PropertyName: contacts.PropFirstName, Operator: "EQ", Value: first},
		{PropertyName: contacts.PropCountry, Operator: "EQ", Value: country},
	}
	if last != "" {
		filters = append(filters, filter{PropertyName: contacts.PropLastName, Operator: "EQ", Value: last})
	}
	return c.search(ctx, filters)
}

func splitName(fullName string) (string, string) {
	first, last, found := strings.Cut(fullName, " ")
	if !found {
		return fullName, ""
	}
	return first, last
}

// Contacts implements sources.Source: it extracts every contact flagged
// allowed_to_collect, paging through the search API.
func (c *Client) Contacts(ctx context.Context) ([]contacts.RawContact, error) {
	req := searchRequest{
		FilterGroups: []filterGroup{{Filters: []filter{
			{PropertyName: collectProperty, Operator: "EQ", Value: "true"},
		}}},
		Sorts:      []searchSort{{PropertyName: "createdate", Direction: "DESCENDING"}},
		Properties: extractProperties,
		Limit:      c.pageSize,
	}

	var rows []contacts.RawContact
	for {
		var resp searchResponse
		if err := c.http.PostJSON(ctx, c.searchURL(), req, &resp); err != nil {
			return nil, err
		}
		for _, result := range resp.Results {
			rows = append(rows, toRawContact(result))
		}

		if resp.Paging == nil || resp.Paging.Next == nil || resp.Paging.Next.After == "" {
			break
		}
		req.After = resp.Paging.Next.After
	}

	logging.Ctx(ctx).Info().Int("contacts", len(rows)).Msg("Extracted contacts from HubSpot")
	return rows, nil
}

// toRawContact maps a search result onto the pipeline's input row.
// Sources with a staging property (raw_email) take precedence over the
// canonical email, matching how collection portals stage dirty data.
func toRawContact(result searchResult) contacts.RawContact {
	props := result.Properties
	email := props["raw_email"]
	if email == "" {
		email = props[contacts.PropEmail]
	}

	raw := contacts.RawContact{
		SourceID:    result.ID,
		Email:       email,
		Phone:       props[contacts.PropPhone],
		FirstName:   props[contacts.PropFirstName],
		LastName:    props[contacts.PropLastName],
		CountryHint: props[contacts.PropCountry],
		Address:     props[contacts.PropAddress],
		Industry:    props[contacts.PropIndustry],
	}
	if created := props["createdate"]; created != "" {
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			raw.CreatedAt = ts
		}
	}
	return raw
}
