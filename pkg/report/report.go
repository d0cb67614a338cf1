// Package report assembles the result of one pipeline run: the fate of
// every input record, per-item sync outcomes, and aggregate counts. A
// report is produced even when a run partially fails, so operators can
// always answer "what happened to record X".
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syncline/contactsync/pkg/contacts"
)

// Fate traces one source record through the run.
type Fate struct {
	SourceID    string                 `json:"source_id"`
	MergedInto  string                 `json:"merged_into"` // identity key of the canonical record
	Disposition contacts.Disposition   `json:"disposition"`
	Status      contacts.OutcomeStatus `json:"status"`
	RemoteID    contacts.RemoteID      `json:"remote_id,omitempty"`
	Failure     contacts.FailureClass  `json:"failure,omitempty"`
	SkipReason  contacts.SkipReason    `json:"skip_reason,omitempty"`
	NeedsReview bool                   `json:"needs_review,omitempty"`
	Message     string                 `json:"message,omitempty"`
}

// Counts are the aggregate totals for a run.
type Counts struct {
	Input     int `json:"input"`
	Canonical int `json:"canonical"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`

	ByFailure map[contacts.FailureClass]int `json:"by_failure,omitempty"`
}

// Report is the full run result handed to the report sink.
type Report struct {
	RunID       string                 `json:"run_id"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt time.Time              `json:"completed_at"`
	DryRun      bool                   `json:"dry_run"`
	Counts      Counts                 `json:"counts"`
	Fates       []Fate                 `json:"fates"`
	Outcomes    []contacts.SyncOutcome `json:"outcomes"`
}

// NewRunID returns a unique id for one pipeline run.
func NewRunID() string {
	return uuid.NewString()
}

// Build assembles a report from the run's outcomes. inputCount is the
// number of raw records extracted, which can exceed the outcome count
// when duplicates merged.
func Build(runID string, startedAt time.Time, dryRun bool, inputCount int, outcomes []contacts.SyncOutcome) *Report {
	r := &Report{
		RunID:       runID,
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		DryRun:      dryRun,
		Outcomes:    outcomes,
		Counts: Counts{
			Input:     inputCount,
			Canonical: len(outcomes),
			ByFailure: make(map[contacts.FailureClass]int),
		},
	}

	for _, outcome := range outcomes {
		switch outcome.Status {
		case contacts.OutcomeSucceeded:
			switch outcome.Disposition {
			case contacts.DispositionCreate:
				r.Counts.Created++
			case contacts.DispositionUpdate:
				r.Counts.Updated++
			}
		case contacts.OutcomeSkipped:
			r.Counts.Skipped++
		case contacts.OutcomeFailed:
			r.Counts.Failed++
			r.Counts.ByFailure[outcome.Failure]++
		}

		sourceIDs := outcome.SourceIDs
		if len(sourceIDs) == 0 {
			sourceIDs = []string{""}
		}
		for _, sourceID := range sourceIDs {
			r.Fates = append(r.Fates, Fate{
				SourceID:    sourceID,
				MergedInto:  outcome.Key.String(),
				Disposition: outcome.Disposition,
				Status:      outcome.Status,
				RemoteID:    outcome.RemoteID,
				Failure:     outcome.Failure,
				SkipReason:  outcome.SkipReason,
				NeedsReview: outcome.NeedsReview,
				Message:     outcome.Message,
			})
		}
	}

	return r
}

// HasFailures reports whether any item failed.
func (r *Report) HasFailures() bool {
	return r.Counts.Failed > 0
}

// Summary returns a one-line human-readable summary.
func (r *Report) Summary() string {
	var parts []string
	if r.DryRun {
		parts = append(parts, "(dry run)")
	}
	parts = append(parts, fmt.Sprintf(
		"%d contacts in, %d canonical: %d created, %d updated, %d skipped, %d failed",
		r.Counts.Input, r.Counts.Canonical,
		r.Counts.Created, r.Counts.Updated, r.Counts.Skipped, r.Counts.Failed))
	return strings.Join(parts, " ")
}

// Sink receives the final report of a run.
type Sink interface {
	Write(r *Report) error
}

// JSONSink writes the report as indented JSON.
type JSONSink struct {
	W io.Writer
}

// Write implements Sink.
func (s *JSONSink) Write(r *Report) error {
	enc := json.NewEncoder(s.W)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// FileSink writes the report as indented JSON to a file, creating or
// truncating it.
type FileSink struct {
	Path string
}

// Write implements Sink.
func (s *FileSink) Write(r *Report) error {
	f, err := os.Create(s.Path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return (&JSONSink{W: f}).Write(r)
}
