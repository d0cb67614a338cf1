package contactsync

import (
	"time"

	"github.com/syncline/contactsync/pkg/batch"
	"github.com/syncline/contactsync/pkg/constants"
	"github.com/syncline/contactsync/pkg/directory"
	"github.com/syncline/contactsync/pkg/errors"
	"github.com/syncline/contactsync/pkg/geo"
	"github.com/syncline/contactsync/pkg/normalize"
	"github.com/syncline/contactsync/pkg/report"
	"github.com/syncline/contactsync/pkg/sources"
)

// config holds the resolved client configuration.
type config struct {
	source      sources.Source
	directory   directory.Directory
	rules       *normalize.Rules
	locator     geo.Locator
	batch       batch.Config
	concurrency int
	sink        report.Sink
}

func defaultConfig() *config {
	return &config{
		rules:       normalize.DefaultRules(),
		batch:       batch.DefaultConfig(),
		concurrency: constants.MaxConcurrentRequests,
	}
}

// Option is a function that configures a ContactSync instance.
type Option func(*config) error

// WithSource configures where raw contacts are pulled from.
func WithSource(src sources.Source) Option {
	return func(c *config) error {
		c.source = src
		return nil
	}
}

// WithDirectory configures the remote directory to reconcile against.
func WithDirectory(dir directory.Directory) Option {
	return func(c *config) error {
		c.directory = dir
		return nil
	}
}

// WithRules configures the normalization rules. Nil rules are rejected;
// omit the option to use the defaults.
func WithRules(rules *normalize.Rules) Option {
	return func(c *config) error {
		if rules == nil {
			return errors.NewConfigError("rules", "rules must not be nil", nil)
		}
		c.rules = rules
		return nil
	}
}

// WithLocator configures the place-to-country locator used when a
// country hint is not an ISO code.
func WithLocator(locator geo.Locator) Option {
	return func(c *config) error {
		c.locator = locator
		return nil
	}
}

// WithBatchConfig configures batch sizing and retry behavior.
func WithBatchConfig(cfg batch.Config) Option {
	return func(c *config) error {
		c.batch = cfg
		return nil
	}
}

// WithConcurrency bounds concurrent directory lookups during
// reconciliation.
func WithConcurrency(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return errors.NewConfigError("concurrency", "concurrency must be at least 1", nil)
		}
		c.concurrency = n
		return nil
	}
}

// WithReportSink configures where run reports are written. Without a
// sink, reports are only returned from Run.
func WithReportSink(sink report.Sink) Option {
	return func(c *config) error {
		c.sink = sink
		return nil
	}
}

// RunOptions holds per-run settings.
type RunOptions struct {
	// DryRun computes and reports the changeset without writing
	// anything to the directory.
	DryRun bool

	// Timeout bounds the whole run. Zero means the default run timeout.
	Timeout time.Duration
}

// RunOption is a function that configures a single run.
type RunOption func(*RunOptions)

// NewRunOptions creates RunOptions with defaults applied.
func NewRunOptions(opts ...RunOption) *RunOptions {
	options := &RunOptions{
		Timeout: constants.RunTimeout,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithDryRun suppresses directory writes for this run.
func WithDryRun(enabled bool) RunOption {
	return func(o *RunOptions) {
		o.DryRun = enabled
	}
}

// WithTimeout overrides the run timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) RunOption {
	return func(o *RunOptions) {
		o.Timeout = d
	}
}
