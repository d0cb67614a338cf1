// Package directory defines the remote contact directory boundary — the
// CRM the pipeline reconciles against. Implementations map the vendor's
// wire format onto these fixed types so the rest of the pipeline never
// sees vendor shapes, and map vendor failures onto the pkg/errors
// taxonomy so retry policy stays vendor-independent.
package directory

import (
	"context"

	"github.com/syncline/contactsync/pkg/contacts"
)

// Contact is a remote contact snapshot: its directory id plus the flat
// property map the directory currently holds for it.
type Contact struct {
	ID         contacts.RemoteID
	Properties map[string]string
}

// OpKind distinguishes batched write operations.
type OpKind string

// Operation kinds.
const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
)

// Operation is one write within a batch submission.
type Operation struct {
	Kind OpKind

	// RemoteID is the target contact. Set only for updates.
	RemoteID contacts.RemoteID

	// Properties is the write payload: full field set for creates,
	// changed fields only for updates.
	Properties map[string]string
}

// Result is the per-operation outcome of a batch submission. Partial
// application is a normal, expected outcome: some results may carry
// errors while others succeeded.
type Result struct {
	// RemoteID is the created or updated contact id on success.
	RemoteID contacts.RemoteID

	// Err is nil on success; otherwise an error from the pkg/errors
	// taxonomy (validation, not-found, ...).
	Err error
}

// Directory is the remote contact directory. All calls are
// non-transactional across a batch.
type Directory interface {
	// FindByEmail returns every remote contact whose email matches.
	FindByEmail(ctx context.Context, email string) ([]Contact, error)

	// FindByPhone returns every remote contact whose phone matches.
	FindByPhone(ctx context.Context, phone string) ([]Contact, error)

	// FindByName returns every remote contact matching the lower-cased
	// full name and ISO country code. Used only for contacts keyed by
	// name, mirroring the identity key precedence.
	FindByName(ctx context.Context, fullName, country string) ([]Contact, error)

	// Create creates one contact and returns its new remote id.
	Create(ctx context.Context, properties map[string]string) (contacts.RemoteID, error)

	// Update applies changed fields to an existing contact.
	Update(ctx context.Context, id contacts.RemoteID, properties map[string]string) error

	// BatchSubmit applies a batch of operations and returns one result
	// per operation, in order. A wholesale error (rate limit, outage)
	// means nothing in the batch was deliberately applied.
	BatchSubmit(ctx context.Context, ops []Operation) ([]Result, error)

	// BatchLimit is the documented maximum batch size.
	BatchLimit() int
}
