// Package batch executes a reconciled change-set against the remote
// directory in bounded batches.
//
// Each batch moves through an explicit state machine:
//
//	PENDING -> SUBMITTED -> SUCCEEDED | PARTIALLY_FAILED | RATE_LIMITED | FAILED
//
// Rate-limited batches are retried whole with exponential backoff up to
// a bounded count; timeouts and transient unavailability get a smaller
// retry budget. Items the remote rejects individually (validation) are
// terminal for the run — retrying them risks duplicate creates — and are
// reported so a future run can re-reconcile them.
package batch

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/syncline/contactsync/pkg/constants"
	"github.com/syncline/contactsync/pkg/contacts"
	"github.com/syncline/contactsync/pkg/directory"
	"github.com/syncline/contactsync/pkg/errors"
	"github.com/syncline/contactsync/pkg/logging"
)

// State is a batch's position in the submission state machine.
type State string

// Batch states.
const (
	StatePending         State = "PENDING"
	StateSubmitted       State = "SUBMITTED"
	StateSucceeded       State = "SUCCEEDED"
	StatePartiallyFailed State = "PARTIALLY_FAILED"
	StateRateLimited     State = "RATE_LIMITED"
	StateFailed          State = "FAILED"
)

// Config bounds batching, retries, and concurrency. A run's behavior is
// fully determined by its config; nothing is read from process state.
type Config struct {
	// BatchSize is the number of operations per submission. Capped by
	// the directory's own batch limit.
	BatchSize int

	// Concurrency bounds in-flight batch submissions.
	Concurrency int

	// MaxRateLimitRetries is the retry budget for rate-limited batches.
	MaxRateLimitRetries int

	// MaxTransientRetries is the retry budget for timeouts and outages.
	MaxTransientRetries int

	// Backoff is the base delay, doubled per attempt up to MaxBackoff.
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		BatchSize:           constants.DefaultBatchSize,
		Concurrency:         constants.MaxConcurrentRequests,
		MaxRateLimitRetries: constants.MaxRateLimitRetries,
		MaxTransientRetries: constants.MaxTransientRetries,
		Backoff:             constants.RetryBackoff,
		MaxBackoff:          constants.MaxRetryBackoff,
	}
}

// Synchronizer submits change items to a remote directory.
type Synchronizer struct {
	dir   directory.Directory
	cfg   Config
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithSleep replaces the backoff sleep, for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Synchronizer) {
		s.sleep = sleep
	}
}

// New creates a Synchronizer. Zero config fields fall back to defaults,
// and the batch size is clamped to the directory's documented limit.
func New(dir directory.Directory, cfg Config, opts ...Option) *Synchronizer {
	defaults := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if limit := dir.BatchLimit(); limit > 0 && cfg.BatchSize > limit {
		cfg.BatchSize = limit
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.Concurrency
	}
	if cfg.MaxRateLimitRetries <= 0 {
		cfg.MaxRateLimitRetries = defaults.MaxRateLimitRetries
	}
	if cfg.MaxTransientRetries <= 0 {
		cfg.MaxTransientRetries = defaults.MaxTransientRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaults.Backoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaults.MaxBackoff
	}

	s := &Synchronizer{dir: dir, cfg: cfg, sleep: sleepWithContext}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// indexed ties a change item to its slot in the outcome slice.
type indexed struct {
	pos  int
	item contacts.ChangeItem
}

// Sync executes the change-set and returns one SyncOutcome per item, in
// input order. Skips never reach the directory. Cancellation is checked
// between batches only; a submitted batch always runs to completion so
// remote state stays unambiguous. The outcome slice is complete even on
// cancellation, with unsubmitted items marked canceled.
func (s *Synchronizer) Sync(ctx context.Context, items []contacts.ChangeItem) ([]contacts.SyncOutcome, error) {
	outcomes := make([]contacts.SyncOutcome, len(items))

	var actionable []indexed
	for i, item := range items {
		if item.Disposition == contacts.DispositionSkip {
			outcomes[i] = skippedOutcome(item)
			continue
		}
		actionable = append(actionable, indexed{pos: i, item: item})
	}

	batches := partition(actionable, s.cfg.BatchSize)

	g := &errgroup.Group{}
	g.SetLimit(s.cfg.Concurrency)
	for i, b := range batches {
		g.Go(func() error {
			s.runBatch(ctx, i, b, outcomes)
			return nil
		})
	}
	_ = g.Wait()

	logOutcomes(ctx, outcomes)
	return outcomes, ctx.Err()
}

// partition splits items into batches of at most size, preserving order
// within each batch.
func partition(items []indexed, size int) [][]indexed {
	var batches [][]indexed
	for len(items) > 0 {
		n := min(size, len(items))
		batches = append(batches, items[:n])
		items = items[n:]
	}
	return batches
}

// runBatch drives one batch through the state machine, writing terminal
// outcomes into each item's slot.
func (s *Synchronizer) runBatch(ctx context.Context, number int, b []indexed, outcomes []contacts.SyncOutcome) {
	ops := make([]directory.Operation, len(b))
	for i, ix := range b {
		ops[i] = toOperation(ix.item)
	}

	state := StatePending
	log := logging.Ctx(ctx).With().Int("batch", number).Int("size", len(b)).Logger()

	var rateAttempts, transientAttempts int
	for {
		// Cooperative cancellation point: only while the batch is
		// still pending.
		if err := ctx.Err(); err != nil {
			s.failAll(b, outcomes, contacts.FailureCanceled, "run canceled before batch submission")
			return
		}

		state = transition(log, state, StateSubmitted)
		// A submitted batch runs to completion regardless of run
		// cancellation; the transport's own timeout still applies.
		results, err := s.dir.BatchSubmit(context.WithoutCancel(ctx), ops)

		switch {
		case err == nil:
			final := transition(log, state, s.settle(b, results, outcomes))
			log.Debug().Str("state", string(final)).Msg("Batch settled")
			return

		case errors.IsRateLimited(err):
			state = transition(log, state, StateRateLimited)
			rateAttempts++
			if rateAttempts > s.cfg.MaxRateLimitRetries {
				s.failAll(b, outcomes, contacts.FailureRateLimitExhaust, err.Error())
				return
			}
			log.Warn().Int("attempt", rateAttempts).Msg("Batch rate limited, backing off")
			if s.backoff(ctx, rateAttempts) != nil {
				s.failAll(b, outcomes, contacts.FailureCanceled, "run canceled during backoff")
				return
			}
			state = transition(log, state, StatePending)

		case errors.IsTimeout(err) || errors.IsUnavailable(err):
			transientAttempts++
			if transientAttempts > s.cfg.MaxTransientRetries {
				s.failAll(b, outcomes, classify(err), err.Error())
				return
			}
			log.Warn().Err(err).Int("attempt", transientAttempts).Msg("Batch submission failed, retrying")
			if s.backoff(ctx, transientAttempts) != nil {
				s.failAll(b, outcomes, contacts.FailureCanceled, "run canceled during backoff")
				return
			}
			state = transition(log, state, StatePending)

		default:
			log.Error().Err(err).Msg("Batch failed")
			s.failAll(b, outcomes, classify(err), err.Error())
			return
		}
	}
}

// transition logs a state change and returns the new state, keeping
// every step of the machine inspectable in debug output.
func transition(log zerolog.Logger, from, to State) State {
	log.Debug().Str("from", string(from)).Str("to", string(to)).Msg("Batch state transition")
	return to
}

// settle maps per-operation results onto outcomes and returns the
// batch's terminal state. Individually rejected items are not retried
// within the run.
func (s *Synchronizer) settle(b []indexed, results []directory.Result, outcomes []contacts.SyncOutcome) State {
	failed := 0
	for i, ix := range b {
		outcome := baseOutcome(ix.item)

		var result directory.Result
		if i < len(results) {
			result = results[i]
		} else {
			result.Err = errors.New("directory returned no result for operation")
		}

		if result.Err != nil {
			failed++
			outcome.Status = contacts.OutcomeFailed
			outcome.Failure = classify(result.Err)
			outcome.Message = result.Err.Error()
		} else {
			outcome.Status = contacts.OutcomeSucceeded
			outcome.RemoteID = result.RemoteID
			// New remote ids flow back onto the canonical contact for
			// the run report.
			if ix.item.Contact != nil && ix.item.Contact.RemoteID == "" {
				ix.item.Contact.RemoteID = result.RemoteID
			}
		}
		outcomes[ix.pos] = outcome
	}

	if failed == 0 {
		return StateSucceeded
	}
	if failed == len(b) {
		return StateFailed
	}
	return StatePartiallyFailed
}

// failAll marks every item in the batch failed with one classification.
func (s *Synchronizer) failAll(b []indexed, outcomes []contacts.SyncOutcome, class contacts.FailureClass, msg string) {
	for _, ix := range b {
		outcome := baseOutcome(ix.item)
		outcome.Status = contacts.OutcomeFailed
		outcome.Failure = class
		outcome.Message = msg
		outcomes[ix.pos] = outcome
	}
}

// backoff sleeps for an exponentially growing delay.
func (s *Synchronizer) backoff(ctx context.Context, attempt int) error {
	delay := s.cfg.Backoff << (attempt - 1)
	if delay > s.cfg.MaxBackoff || delay <= 0 {
		delay = s.cfg.MaxBackoff
	}
	return s.sleep(ctx, delay)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func toOperation(item contacts.ChangeItem) directory.Operation {
	op := directory.Operation{Properties: item.Fields}
	switch item.Disposition {
	case contacts.DispositionCreate:
		op.Kind = directory.OpCreate
	case contacts.DispositionUpdate:
		op.Kind = directory.OpUpdate
		op.RemoteID = item.RemoteID
	}
	return op
}

func baseOutcome(item contacts.ChangeItem) contacts.SyncOutcome {
	outcome := contacts.SyncOutcome{
		Disposition: item.Disposition,
		RemoteID:    item.RemoteID,
	}
	if item.Contact != nil {
		outcome.Key = item.Contact.Key
		outcome.SourceIDs = item.Contact.SourceIDs
	}
	return outcome
}

func skippedOutcome(item contacts.ChangeItem) contacts.SyncOutcome {
	outcome := baseOutcome(item)
	outcome.Status = contacts.OutcomeSkipped
	outcome.SkipReason = item.SkipReason
	outcome.NeedsReview = item.NeedsReview
	return outcome
}

// classify maps a directory error onto a failure classification.
func classify(err error) contacts.FailureClass {
	switch {
	case errors.IsValidation(err):
		return contacts.FailureValidation
	case errors.IsTimeout(err):
		return contacts.FailureTimeout
	case errors.IsUnavailable(err):
		return contacts.FailureUnavailable
	case errors.IsNotFound(err):
		return contacts.FailureNotFound
	case errors.IsRateLimited(err):
		return contacts.FailureRateLimitExhaust
	case errors.IsCanceled(err):
		return contacts.FailureCanceled
	default:
		return contacts.FailureUnknown
	}
}

func logOutcomes(ctx context.Context, outcomes []contacts.SyncOutcome) {
	var succeeded, failed, skipped int
	for _, o := range outcomes {
		switch o.Status {
		case contacts.OutcomeSucceeded:
			succeeded++
		case contacts.OutcomeFailed:
			failed++
		case contacts.OutcomeSkipped:
			skipped++
		}
	}
	logging.Ctx(ctx).Info().
		Int("succeeded", succeeded).
		Int("failed", failed).
		Int("skipped", skipped).
		Msg("Batch synchronization finished")
}
