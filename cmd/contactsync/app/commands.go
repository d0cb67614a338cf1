package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syncline/contactsync"
)

// registerCommands adds all subcommands to the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.newSyncCommand())
	rootCmd.AddCommand(a.newVersionCommand())
}

// newSyncCommand creates the sync command, the main pipeline run.
func (a *App) newSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run the contact sync pipeline",
		Long: `Sync pulls raw contacts from the configured source, normalizes and
deduplicates them, reconciles the canonical contacts against the remote
directory, and applies the resulting creates and updates in batches.

With --dry-run the pipeline computes and reports the changeset without
writing anything.`,
		RunE: a.runSync,
	}

	cmd.Flags().Bool("dry-run", false, "compute and report changes without applying them")
	cmd.Flags().String("csv", "", "read contacts from a CSV file instead of the directory")
	cmd.Flags().String("rules", "", "normalization rules YAML file")
	cmd.Flags().String("report", "", "write the run report as JSON to this file")
	cmd.Flags().Bool("geocode", false, "resolve unknown country hints via the geocoding service")
	cmd.Flags().Int("batch-size", 0, "operations per batch submission (default from directory limit)")
	cmd.Flags().Int("concurrency", 0, "concurrent directory requests")
	cmd.Flags().Duration("timeout", 0, "overall run timeout (default 30m)")

	return cmd
}

// runSync executes the sync command.
func (a *App) runSync(cmd *cobra.Command, _ []string) error {
	if csvFile := mustGetString(cmd, "csv"); csvFile != "" {
		a.config.CSVFile = csvFile
	}
	if rules := mustGetString(cmd, "rules"); rules != "" {
		a.config.RulesFile = rules
	}
	if reportFile := mustGetString(cmd, "report"); reportFile != "" {
		a.config.ReportFile = reportFile
	}
	if geocode := mustGetBool(cmd, "geocode"); geocode {
		a.config.Geocode = true
	}
	if size, err := cmd.Flags().GetInt("batch-size"); err == nil && size > 0 {
		a.config.BatchSize = size
	}
	if n, err := cmd.Flags().GetInt("concurrency"); err == nil && n > 0 {
		a.config.Concurrency = n
	}
	if d, err := cmd.Flags().GetDuration("timeout"); err == nil && d > 0 {
		a.config.Timeout = d
	}

	cs, err := a.ContactSync()
	if err != nil {
		return err
	}

	runOpts := []contactsync.RunOption{
		contactsync.WithTimeout(a.config.Timeout),
	}
	if mustGetBool(cmd, "dry-run") {
		runOpts = append(runOpts, contactsync.WithDryRun(true))
	}

	rep, err := cs.Run(cmd.Context(), runOpts...)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), rep.Summary())
	if rep.HasFailures() {
		return fmt.Errorf("run %s completed with %d failed contacts", rep.RunID, rep.Counts.Failed)
	}
	return nil
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "contactsync %s (commit %s, built %s)\n",
				a.version, a.commit, a.date)
		},
	}
}
