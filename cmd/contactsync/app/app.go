// Package app provides the application context and dependency wiring
// for the contactsync CLI: configuration loading, logger setup, and
// construction of the pipeline client from config and flags.
package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/syncline/contactsync"
	"github.com/syncline/contactsync/pkg/batch"
	"github.com/syncline/contactsync/pkg/directory"
	"github.com/syncline/contactsync/pkg/directory/hubspot"
	"github.com/syncline/contactsync/pkg/errors"
	"github.com/syncline/contactsync/pkg/geo"
	"github.com/syncline/contactsync/pkg/logging"
	"github.com/syncline/contactsync/pkg/normalize"
	"github.com/syncline/contactsync/pkg/report"
	"github.com/syncline/contactsync/pkg/sources"
)

// App represents the contactsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date string) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "loading configuration", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger
	logging.SetDefault(logger)

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// ContactSync builds the pipeline client from the current configuration.
func (a *App) ContactSync() (contactsync.ContactSync, error) {
	dir, err := a.directory()
	if err != nil {
		return nil, err
	}
	src, err := a.source(dir)
	if err != nil {
		return nil, err
	}
	rules, err := a.rules()
	if err != nil {
		return nil, err
	}

	batchCfg := batch.DefaultConfig()
	if a.config.BatchSize > 0 {
		batchCfg.BatchSize = a.config.BatchSize
	}
	if a.config.Concurrency > 0 {
		batchCfg.Concurrency = a.config.Concurrency
	}

	opts := []contactsync.Option{
		contactsync.WithSource(src),
		contactsync.WithDirectory(dir),
		contactsync.WithRules(rules),
		contactsync.WithBatchConfig(batchCfg),
		contactsync.WithConcurrency(a.config.Concurrency),
	}
	if locator := a.locator(rules); locator != nil {
		opts = append(opts, contactsync.WithLocator(locator))
	}
	if a.config.ReportFile != "" {
		opts = append(opts, contactsync.WithReportSink(&report.FileSink{Path: a.config.ReportFile}))
	}

	return contactsync.New(opts...)
}

// directory builds the remote directory client.
func (a *App) directory() (directory.Directory, error) {
	if a.config.HubSpotAPIKey == "" {
		return nil, fmt.Errorf("HUBSPOT_API_KEY is not set: %w", errors.ErrAPIKeyRequired)
	}
	var opts []hubspot.Option
	if a.config.HubSpotBaseURL != "" {
		opts = append(opts, hubspot.WithBaseURL(a.config.HubSpotBaseURL))
	}
	return hubspot.New(a.config.HubSpotAPIKey, opts...), nil
}

// source picks where raw contacts come from: a CSV file when one is
// configured, otherwise extraction from the directory itself.
func (a *App) source(dir directory.Directory) (sources.Source, error) {
	if a.config.CSVFile != "" {
		return &sources.CSV{Path: a.config.CSVFile}, nil
	}
	src, ok := dir.(sources.Source)
	if !ok {
		return nil, errors.NewConfigError("source", "directory does not support extraction; provide --csv", nil)
	}
	return src, nil
}

// rules loads the normalization rules file, or the defaults.
func (a *App) rules() (*normalize.Rules, error) {
	if a.config.RulesFile == "" {
		return normalize.DefaultRules(), nil
	}
	return normalize.LoadRules(a.config.RulesFile)
}

// locator builds the place-to-country chain: static hints first, then
// the geocoding service when enabled.
func (a *App) locator(rules *normalize.Rules) geo.Locator {
	chain := geo.Chain{}
	if len(rules.Places) > 0 {
		chain = append(chain, geo.NewStatic(rules.Places))
	}
	if a.config.Geocode {
		url := a.config.GeocodeURL
		if url == "" {
			url = geo.DefaultNominatimURL
		}
		chain = append(chain, geo.NewNominatim(url))
	}
	if len(chain) == 0 {
		return nil
	}
	return chain
}

// ExitOnError prints the error to stderr and exits with a non-zero
// status.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
