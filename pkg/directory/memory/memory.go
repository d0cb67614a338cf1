// Package memory provides an in-memory contact directory for tests and
// offline dry runs. It implements the full directory contract, including
// per-operation batch results, so pipeline behavior against it matches
// behavior against a real CRM.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/syncline/contactsync/pkg/contacts"
	"github.com/syncline/contactsync/pkg/directory"
	"github.com/syncline/contactsync/pkg/errors"
)

// Directory is a thread-safe in-memory contact directory.
type Directory struct {
	mu         sync.RWMutex
	records    map[contacts.RemoteID]map[string]string
	order      []contacts.RemoteID
	nextID     int
	batchLimit int
}

// Option configures a memory directory.
type Option func(*Directory)

// WithBatchLimit overrides the directory's batch size limit.
func WithBatchLimit(limit int) Option {
	return func(d *Directory) {
		d.batchLimit = limit
	}
}

// New creates an empty in-memory directory.
func New(opts ...Option) *Directory {
	d := &Directory{
		records:    make(map[contacts.RemoteID]map[string]string),
		batchLimit: 100,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Seed inserts a contact with a fixed id, for test setup.
func (d *Directory) Seed(id contacts.RemoteID, properties map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records[id] = cloneProps(properties)
	d.order = append(d.order, id)
}

// Len returns the number of stored contacts.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

// Get returns a stored contact's properties.
func (d *Directory) Get(id contacts.RemoteID) (map[string]string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	props, ok := d.records[id]
	if !ok {
		return nil, false
	}
	return cloneProps(props), true
}

// FindByEmail implements directory.Directory.
func (d *Directory) FindByEmail(_ context.Context, email string) ([]directory.Contact, error) {
	return d.findBy(func(props map[string]string) bool {
		return props[contacts.PropEmail] == email
	}), nil
}

// FindByPhone implements directory.Directory.
func (d *Directory) FindByPhone(_ context.Context, phone string) ([]directory.Contact, error) {
	return d.findBy(func(props map[string]string) bool {
		return props[contacts.PropPhone] == phone
	}), nil
}

// FindByName implements directory.Directory.
func (d *Directory) FindByName(_ context.Context, fullName, country string) ([]directory.Contact, error) {
	return d.findBy(func(props map[string]string) bool {
		name := strings.ToLower(strings.TrimSpace(
			strings.TrimSpace(props[contacts.PropFirstName]) + " " + strings.TrimSpace(props[contacts.PropLastName])))
		return name == fullName && props[contacts.PropCountry] == country
	}), nil
}

func (d *Directory) findBy(match func(map[string]string) bool) []directory.Contact {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var found []directory.Contact
	for _, id := range d.order {
		if props := d.records[id]; match(props) {
			found = append(found, directory.Contact{ID: id, Properties: cloneProps(props)})
		}
	}
	return found
}

// Create implements directory.Directory.
func (d *Directory) Create(_ context.Context, properties map[string]string) (contacts.RemoteID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createLocked(properties), nil
}

func (d *Directory) createLocked(properties map[string]string) contacts.RemoteID {
	d.nextID++
	id := contacts.RemoteID(fmt.Sprintf("mem-%d", d.nextID))
	d.records[id] = cloneProps(properties)
	d.order = append(d.order, id)
	return id
}

// Update implements directory.Directory.
func (d *Directory) Update(_ context.Context, id contacts.RemoteID, properties map[string]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updateLocked(id, properties)
}

func (d *Directory) updateLocked(id contacts.RemoteID, properties map[string]string) error {
	record, ok := d.records[id]
	if !ok {
		return errors.ErrNotFound
	}
	for name, value := range properties {
		record[name] = value
	}
	return nil
}

// BatchSubmit implements directory.Directory. Operations apply in order;
// an individual failure is reported in its result and does not stop the
// rest of the batch.
func (d *Directory) BatchSubmit(_ context.Context, ops []directory.Operation) ([]directory.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	results := make([]directory.Result, len(ops))
	for i, op := range ops {
		switch op.Kind {
		case directory.OpCreate:
			results[i].RemoteID = d.createLocked(op.Properties)
		case directory.OpUpdate:
			if err := d.updateLocked(op.RemoteID, op.Properties); err != nil {
				results[i].Err = err
				continue
			}
			results[i].RemoteID = op.RemoteID
		default:
			results[i].Err = errors.NewValidationError("kind", string(op.Kind), "unknown operation kind")
		}
	}
	return results, nil
}

// BatchLimit implements directory.Directory.
func (d *Directory) BatchLimit() int {
	return d.batchLimit
}

func cloneProps(props map[string]string) map[string]string {
	clone := make(map[string]string, len(props))
	for name, value := range props {
		clone[name] = value
	}
	return clone
}
