// Package contacts defines the data model shared by every stage of the
// synchronization pipeline: raw input rows, normalized records, canonical
// merged records, and the change items and outcomes produced when the
// canonical set is reconciled against a remote directory.
package contacts

import (
	"strings"
	"time"
)

// RemoteID identifies a contact inside the remote directory.
type RemoteID string

// RawContact is an untrusted input row. Any field may be absent or
// malformed; normalization never rejects a row outright.
type RawContact struct {
	SourceID    string    `json:"source_id" yaml:"source_id"`
	Email       string    `json:"email,omitempty" yaml:"email,omitempty"`
	Phone       string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	FirstName   string    `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	CountryHint string    `json:"country_hint,omitempty" yaml:"country_hint,omitempty"`
	Address     string    `json:"address,omitempty" yaml:"address,omitempty"`
	Industry    string    `json:"industry,omitempty" yaml:"industry,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// NormalizedContact is a RawContact after field canonicalization.
//
// Invariants: Email, if set, is lower-cased with a syntactically valid
// domain; Phone, if set, is E.164; Country, if set, is an ISO 3166-1
// alpha-2 code. Absence is the empty string.
type NormalizedContact struct {
	SourceID  string
	Email     string
	Phone     string
	FirstName string
	LastName  string
	Country   string
	City      string
	Address   string
	Industry  string
	CreatedAt time.Time

	// PhoneUnparsable marks a phone value that survived cleanup but could
	// not be parsed into E.164. RawPhone retains the original input for
	// the run report.
	PhoneUnparsable bool
	RawPhone        string
}

// FullName returns the lower-cased full name, or "" when both name
// fields are absent.
func (c NormalizedContact) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	return strings.ToLower(name)
}

// CanonicalContact is the merge of all NormalizedContacts that share an
// identity key. One CanonicalContact exists per key per run.
type CanonicalContact struct {
	Key       Key
	Email     string
	Phone     string
	FirstName string
	LastName  string
	Country   string
	City      string
	Address   string
	Industry  string
	CreatedAt time.Time

	// SourceIDs lists every source record absorbed into this contact,
	// in input order.
	SourceIDs []string

	// RemoteID is set once the contact is matched against, or created
	// in, the remote directory. It is not persisted across runs.
	RemoteID RemoteID
}

// Properties returns the contact's non-absent fields as a flat property
// map keyed by remote directory property names.
func (c *CanonicalContact) Properties() map[string]string {
	props := make(map[string]string, 8)
	set := func(name, value string) {
		if value != "" {
			props[name] = value
		}
	}
	set(PropEmail, c.Email)
	set(PropPhone, c.Phone)
	set(PropFirstName, c.FirstName)
	set(PropLastName, c.LastName)
	set(PropCountry, c.Country)
	set(PropCity, c.City)
	set(PropAddress, c.Address)
	set(PropIndustry, c.Industry)
	return props
}

// Remote directory property names used in create/update payloads.
const (
	PropEmail     = "email"
	PropPhone     = "phone"
	PropFirstName = "firstname"
	PropLastName  = "lastname"
	PropCountry   = "country"
	PropCity      = "city"
	PropAddress   = "address"
	PropIndustry  = "industry"
)
