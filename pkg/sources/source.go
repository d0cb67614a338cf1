// Package sources defines where raw contact rows come from. A source
// may return zero or more rows, and rows may have any subset of fields
// absent; normalization deals with whatever comes back.
package sources

import (
	"context"

	"github.com/syncline/contactsync/pkg/contacts"
)

// Source supplies the raw contact rows for one pipeline run.
type Source interface {
	// Contacts returns every candidate row. The full set is required
	// before the pipeline can start, since deduplication needs the
	// whole record set.
	Contacts(ctx context.Context) ([]contacts.RawContact, error)
}

// Slice is a fixed in-memory source, mainly for tests and embedding.
type Slice []contacts.RawContact

// Contacts implements Source.
func (s Slice) Contacts(_ context.Context) ([]contacts.RawContact, error) {
	return s, nil
}
