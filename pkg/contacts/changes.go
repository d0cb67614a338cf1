package contacts

// Disposition classifies what the reconciler decided to do with a
// canonical contact.
type Disposition string

// Dispositions. Exactly one is assigned per CanonicalContact.
const (
	DispositionCreate Disposition = "create"
	DispositionUpdate Disposition = "update"
	DispositionSkip   Disposition = "skip"
)

// SkipReason explains a skip disposition.
type SkipReason string

// Skip reasons.
const (
	SkipUnresolvable    SkipReason = "unresolvable"     // no usable identity fields
	SkipRemoteDuplicate SkipReason = "remote-duplicate" // multiple remote matches, needs manual review
	SkipUpToDate        SkipReason = "up-to-date"       // remote already matches, nothing to write
	SkipDryRun          SkipReason = "dry-run"          // write suppressed by dry-run mode
)

// ChangeItem is the reconciler's decision for one canonical contact.
type ChangeItem struct {
	Contact     *CanonicalContact
	Disposition Disposition

	// RemoteID is the update target. Set only for updates.
	RemoteID RemoteID

	// Fields is the write payload: every non-absent field for a create,
	// only the fields that differ from the remote value for an update.
	Fields map[string]string

	// SkipReason is set only for skips. NeedsReview flags skips that a
	// human must resolve (remote-side duplicates).
	SkipReason  SkipReason
	NeedsReview bool
}

// OutcomeStatus is the terminal status of one change item.
type OutcomeStatus string

// Outcome statuses.
const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeSkipped   OutcomeStatus = "skipped"
)

// FailureClass classifies a failed outcome.
type FailureClass string

// Failure classifications.
const (
	FailureValidation       FailureClass = "validation"
	FailureRateLimitExhaust FailureClass = "rate-limit-exhausted"
	FailureTimeout          FailureClass = "timeout"
	FailureUnavailable      FailureClass = "unavailable"
	FailureNotFound         FailureClass = "not-found"
	FailureCanceled         FailureClass = "canceled"
	FailureUnknown          FailureClass = "unknown"
)

// SyncOutcome records how one change item fared against the remote
// directory.
type SyncOutcome struct {
	Key         Key
	SourceIDs   []string
	Disposition Disposition
	Status      OutcomeStatus

	// RemoteID is the matched or newly created remote contact, when known.
	RemoteID RemoteID

	// Failure and Message are set only for failed outcomes.
	Failure FailureClass
	Message string

	// SkipReason and NeedsReview mirror the change item for skips.
	SkipReason  SkipReason
	NeedsReview bool
}
