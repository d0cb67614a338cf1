// Package contactsync reconciles collected contact data against a remote
// CRM directory. A run pulls raw contacts from a source, normalizes and
// deduplicates them into canonical contacts, diffs those against the
// directory, and applies the resulting creates and updates in batches.
//
// The package exposes a small client configured with functional options:
//
//	cs, err := contactsync.New(
//		contactsync.WithSource(src),
//		contactsync.WithDirectory(dir),
//	)
//	report, err := cs.Run(ctx, contactsync.WithDryRun(true))
package contactsync

import (
	"context"

	"github.com/syncline/contactsync/pkg/batch"
	"github.com/syncline/contactsync/pkg/errors"
	"github.com/syncline/contactsync/pkg/normalize"
	"github.com/syncline/contactsync/pkg/reconcile"
	"github.com/syncline/contactsync/pkg/report"
)

// ContactSync runs the contact reconciliation pipeline.
type ContactSync interface {
	// Run executes one full pipeline run and returns its report.
	Run(ctx context.Context, opts ...RunOption) (*report.Report, error)
}

// contactSync is the internal implementation of the ContactSync interface.
type contactSync struct {
	config     *config
	normalizer *normalize.Normalizer
	reconciler *reconcile.Reconciler
	syncer     *batch.Synchronizer
}

// New creates a new ContactSync instance with the given options.
func New(opts ...Option) (ContactSync, error) {
	cs := &contactSync{
		config: defaultConfig(),
	}
	if err := cs.options(opts...); err != nil {
		return nil, err
	}

	if cs.config.source == nil {
		return nil, errors.NewConfigError("source", "a contact source is required", nil)
	}
	if cs.config.directory == nil {
		return nil, errors.NewConfigError("directory", "a remote directory is required", nil)
	}

	normOpts := []normalize.Option{}
	if cs.config.locator != nil {
		normOpts = append(normOpts, normalize.WithLocator(cs.config.locator))
	}
	cs.normalizer = normalize.New(cs.config.rules, normOpts...)
	cs.reconciler = reconcile.New(cs.config.directory, reconcile.WithConcurrency(cs.config.concurrency))
	cs.syncer = batch.New(cs.config.directory, cs.config.batch)

	return cs, nil
}

// options applies the given options to the configuration.
func (cs *contactSync) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(cs.config); err != nil {
			return err
		}
	}
	return nil
}
