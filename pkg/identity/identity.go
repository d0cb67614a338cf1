// Package identity derives the deterministic deduplication key for a
// normalized contact. Two contacts with equal keys are treated as the
// same real-world person.
//
// Precedence: canonical email, else canonical phone, else lower-cased
// full name + country code. A contact with none of those gets a
// per-record unresolved sentinel that never matches another record, so
// unidentifiable rows are carried through the pipeline without ever
// being merged.
package identity

import (
	"github.com/google/uuid"

	"github.com/syncline/contactsync/pkg/contacts"
)

// Key computes the identity key for a normalized contact. The function
// is total: every contact yields exactly one key.
func Key(c contacts.NormalizedContact) contacts.Key {
	if c.Email != "" {
		return contacts.Key{Kind: contacts.KeyEmail, Value: c.Email}
	}
	if c.Phone != "" && !c.PhoneUnparsable {
		return contacts.Key{Kind: contacts.KeyPhone, Value: c.Phone}
	}
	if name := c.FullName(); name != "" && c.Country != "" {
		return contacts.Key{Kind: contacts.KeyName, Value: name + "|" + c.Country}
	}
	return contacts.Key{Kind: contacts.KeyUnresolved, Value: sentinel(c)}
}

// sentinel returns a value unique to this record. The source id keeps it
// deterministic across runs; rows without one fall back to a random id,
// which still guarantees uniqueness within the run.
func sentinel(c contacts.NormalizedContact) string {
	if c.SourceID != "" {
		return c.SourceID
	}
	return uuid.NewString()
}
