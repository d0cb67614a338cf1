// Package reconcile diffs canonical contacts against the remote
// directory and classifies each as a create, update, or skip.
//
// Lookups mirror the identity key precedence: an email-keyed contact is
// matched by email, a phone-keyed contact by phone, a name-keyed contact
// by name and country. Any lookup failure aborts the run before a single
// write is issued — reconciling against partial directory state risks
// duplicate creates, so the stage fails closed.
package reconcile

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/syncline/contactsync/pkg/constants"
	"github.com/syncline/contactsync/pkg/contacts"
	"github.com/syncline/contactsync/pkg/directory"
	"github.com/syncline/contactsync/pkg/errors"
	"github.com/syncline/contactsync/pkg/logging"
)

// Reconciler classifies canonical contacts against a remote directory.
type Reconciler struct {
	dir         directory.Directory
	concurrency int
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithConcurrency bounds how many directory lookups run at once.
func WithConcurrency(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// New creates a Reconciler against the given directory.
func New(dir directory.Directory, opts ...Option) *Reconciler {
	r := &Reconciler{
		dir:         dir,
		concurrency: constants.MaxConcurrentRequests,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile produces exactly one ChangeItem per canonical contact, in
// input order. Lookups are read-only and run concurrently up to the
// configured bound; each goroutine writes only its own slot. Matched
// remote ids are written back onto the canonical contacts for the run
// report.
func (r *Reconciler) Reconcile(ctx context.Context, canon []contacts.CanonicalContact) ([]contacts.ChangeItem, error) {
	items := make([]contacts.ChangeItem, len(canon))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i := range canon {
		contact := &canon[i]

		if !contact.Key.Resolvable() {
			items[i] = contacts.ChangeItem{
				Contact:     contact,
				Disposition: contacts.DispositionSkip,
				SkipReason:  contacts.SkipUnresolvable,
			}
			continue
		}

		slot := &items[i]
		g.Go(func() error {
			matches, err := r.lookup(ctx, contact)
			if err != nil {
				return &errors.LookupError{Key: contact.Key.String(), Err: err}
			}
			*slot = classify(contact, matches)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logReconciled(ctx, items)
	return items, nil
}

// lookup queries the directory using the same field the contact's key
// was derived from.
func (r *Reconciler) lookup(ctx context.Context, contact *contacts.CanonicalContact) ([]directory.Contact, error) {
	switch contact.Key.Kind {
	case contacts.KeyEmail:
		return r.dir.FindByEmail(ctx, contact.Email)
	case contacts.KeyPhone:
		return r.dir.FindByPhone(ctx, contact.Phone)
	case contacts.KeyName:
		name := contacts.NormalizedContact{FirstName: contact.FirstName, LastName: contact.LastName}.FullName()
		return r.dir.FindByName(ctx, name, contact.Country)
	default:
		return nil, errors.New("unexpected key kind " + string(contact.Key.Kind))
	}
}

// classify turns a lookup result into a disposition.
func classify(contact *contacts.CanonicalContact, matches []directory.Contact) contacts.ChangeItem {
	switch len(matches) {
	case 0:
		return contacts.ChangeItem{
			Contact:     contact,
			Disposition: contacts.DispositionCreate,
			Fields:      contact.Properties(),
		}
	case 1:
		remote := matches[0]
		contact.RemoteID = remote.ID
		changed := changedFields(contact.Properties(), remote.Properties)
		if len(changed) == 0 {
			return contacts.ChangeItem{
				Contact:     contact,
				Disposition: contacts.DispositionSkip,
				RemoteID:    remote.ID,
				SkipReason:  contacts.SkipUpToDate,
			}
		}
		return contacts.ChangeItem{
			Contact:     contact,
			Disposition: contacts.DispositionUpdate,
			RemoteID:    remote.ID,
			Fields:      changed,
		}
	default:
		// Remote-side duplicates are never auto-merged.
		return contacts.ChangeItem{
			Contact:     contact,
			Disposition: contacts.DispositionSkip,
			SkipReason:  contacts.SkipRemoteDuplicate,
			NeedsReview: true,
		}
	}
}

// changedFields returns the local fields that differ from the remote's
// current value. Remote-only fields are left untouched, which keeps
// update payloads minimal and avoids clobbering data not modeled here.
func changedFields(local, remote map[string]string) map[string]string {
	changed := make(map[string]string, len(local))
	for name, value := range local {
		if remote[name] != value {
			changed[name] = value
		}
	}
	return changed
}

func logReconciled(ctx context.Context, items []contacts.ChangeItem) {
	var creates, updates, skips int
	for _, item := range items {
		switch item.Disposition {
		case contacts.DispositionCreate:
			creates++
		case contacts.DispositionUpdate:
			updates++
		case contacts.DispositionSkip:
			skips++
		}
	}
	logging.Ctx(ctx).Info().
		Int("create", creates).
		Int("update", updates).
		Int("skip", skips).
		Msg("Reconciled against directory")
}
