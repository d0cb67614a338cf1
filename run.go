package contactsync

import (
	"context"
	"fmt"
	"time"

	"github.com/syncline/contactsync/pkg/contacts"
	"github.com/syncline/contactsync/pkg/dedupe"
	"github.com/syncline/contactsync/pkg/logging"
	"github.com/syncline/contactsync/pkg/report"
)

// Run executes one full pipeline run: extract, normalize, deduplicate,
// reconcile, and apply. A dry run stops before applying and reports the
// pending changes as skipped.
func (cs *contactSync) Run(ctx context.Context, opts ...RunOption) (*report.Report, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Parse options
	options := NewRunOptions(opts...)

	// Step 2: Tag the run so every log line carries its id
	runID := report.NewRunID()
	ctx = logging.WithRunID(ctx, runID)
	startedAt := time.Now().UTC()

	// Step 3: Setup context with timeout
	var cancel context.CancelFunc
	if options.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
	} else {
		cancel = func() {} // No-op cancel if no timeout
	}
	defer cancel()

	// Step 4: Pull raw contacts from the source
	raws, err := cs.config.source.Contacts(ctx)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Int("contacts", len(raws)).Msg("Fetched raw contacts")

	// Step 5: Normalize every row (normalization is total, never drops)
	normalized := cs.normalizer.Contacts(ctx, raws)

	// Step 6: Merge duplicates into canonical contacts
	canon := dedupe.Merge(normalized)
	logging.Ctx(ctx).Info().
		Int("input", len(normalized)).
		Int("canonical", len(canon)).
		Msg("Deduplicated contacts")

	// Step 7: Reconcile canonical contacts against the directory
	items, err := cs.reconciler.Reconcile(ctx, canon)
	if err != nil {
		return nil, err
	}

	// Step 8: Apply changes, or report them unapplied on a dry run.
	// A canceled or timed-out sync still yields a complete outcome
	// slice, so the report below covers every record either way.
	var outcomes []contacts.SyncOutcome
	var syncErr error
	if options.DryRun {
		outcomes = dryRunOutcomes(items)
		logging.Ctx(ctx).Info().Bool("dry_run", true).Msg("Dry run completed - no changes applied")
	} else {
		outcomes, syncErr = cs.syncer.Sync(ctx, items)
	}

	// Step 9: Build the run report
	rep := report.Build(runID, startedAt, options.DryRun, len(raws), outcomes)
	logging.Ctx(ctx).Info().Str("summary", rep.Summary()).Msg("Run completed")

	// Step 10: Write the report if a sink is configured
	if cs.config.sink != nil {
		if err := cs.config.sink.Write(rep); err != nil && syncErr == nil {
			return rep, fmt.Errorf("writing report: %w", err)
		}
	}

	return rep, syncErr
}

// dryRunOutcomes converts pending change items into skipped outcomes.
// Items the reconciler already skipped keep their original reason.
func dryRunOutcomes(items []contacts.ChangeItem) []contacts.SyncOutcome {
	outcomes := make([]contacts.SyncOutcome, len(items))
	for i, item := range items {
		outcome := contacts.SyncOutcome{
			Key:         item.Contact.Key,
			SourceIDs:   item.Contact.SourceIDs,
			Disposition: item.Disposition,
			Status:      contacts.OutcomeSkipped,
			RemoteID:    item.RemoteID,
			SkipReason:  item.SkipReason,
			NeedsReview: item.NeedsReview,
		}
		if item.Disposition != contacts.DispositionSkip {
			outcome.SkipReason = contacts.SkipDryRun
		}
		outcomes[i] = outcome
	}
	return outcomes
}
