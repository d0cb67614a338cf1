package contactsync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncline/contactsync/pkg/contacts"
	"github.com/syncline/contactsync/pkg/directory"
	"github.com/syncline/contactsync/pkg/directory/memory"
	"github.com/syncline/contactsync/pkg/report"
	"github.com/syncline/contactsync/pkg/sources"
)

func testRows() []contacts.RawContact {
	return []contacts.RawContact{
		{SourceID: "s1", Email: "Ada.Lovelace@GMIAL.com", FirstName: "Ada", LastName: "Lovelace", CountryHint: "gb"},
		{SourceID: "s2", Email: "ada.lovelace+news@gmail.com", Phone: "+44 20 7946 0958", Industry: "computing"},
		{SourceID: "s3", Email: "grace@example.com", FirstName: "Grace", LastName: "Hopper", CountryHint: "US"},
	}
}

func TestNewRequiresSourceAndDirectory(t *testing.T) {
	_, err := New(WithDirectory(memory.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source")

	_, err = New(WithSource(sources.Slice(nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestRunCreatesAndConverges(t *testing.T) {
	dir := memory.New()
	cs, err := New(
		WithSource(sources.Slice(testRows())),
		WithDirectory(dir),
	)
	require.NoError(t, err)

	rep, err := cs.Run(context.Background())
	require.NoError(t, err)

	// s1 and s2 merge on the deduplicated gmail address.
	assert.Equal(t, 3, rep.Counts.Input)
	assert.Equal(t, 2, rep.Counts.Created)
	assert.Equal(t, 0, rep.Counts.Updated)
	assert.Equal(t, 0, rep.Counts.Failed)
	assert.False(t, rep.HasFailures())
	assert.Equal(t, 2, dir.Len())

	// A second run over the same input must be a no-op: every contact
	// now matches remotely with nothing left to write.
	rep2, err := cs.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, rep2.Counts.Created)
	assert.Equal(t, 0, rep2.Counts.Updated)
	assert.Equal(t, 0, rep2.Counts.Failed)
	assert.Equal(t, 2, dir.Len())
}

func TestRunUpdatesChangedFields(t *testing.T) {
	dir := memory.New()
	dir.Seed("7", map[string]string{
		contacts.PropEmail:     "grace@example.com",
		contacts.PropFirstName: "Grace",
	})

	cs, err := New(
		WithSource(sources.Slice([]contacts.RawContact{
			{SourceID: "s3", Email: "grace@example.com", FirstName: "Grace", LastName: "Hopper", CountryHint: "US"},
		})),
		WithDirectory(dir),
	)
	require.NoError(t, err)

	rep, err := cs.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Counts.Updated)
	assert.Equal(t, 0, rep.Counts.Created)

	props, ok := dir.Get("7")
	require.True(t, ok)
	assert.Equal(t, "Hopper", props[contacts.PropLastName])
	assert.Equal(t, "US", props[contacts.PropCountry])
	assert.Equal(t, "Grace", props[contacts.PropFirstName])
}

func TestRunDryRunWritesNothing(t *testing.T) {
	dir := memory.New()
	cs, err := New(
		WithSource(sources.Slice(testRows())),
		WithDirectory(dir),
	)
	require.NoError(t, err)

	rep, err := cs.Run(context.Background(), WithDryRun(true))
	require.NoError(t, err)

	assert.True(t, rep.DryRun)
	assert.Equal(t, 0, dir.Len())
	assert.Equal(t, 0, rep.Counts.Created)
	assert.NotZero(t, rep.Counts.Skipped)

	for _, fate := range rep.Fates {
		assert.Equal(t, contacts.OutcomeSkipped, fate.Status)
	}
}

func TestRunReportSink(t *testing.T) {
	sink := &captureSink{}
	cs, err := New(
		WithSource(sources.Slice(testRows())),
		WithDirectory(memory.New()),
		WithReportSink(sink),
	)
	require.NoError(t, err)

	rep, err := cs.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sink.report)
	assert.Equal(t, rep.RunID, sink.report.RunID)
	assert.NotEmpty(t, rep.RunID)
	assert.WithinDuration(t, time.Now().UTC(), rep.StartedAt, time.Minute)
}

func TestRunTimedOutSyncStillReports(t *testing.T) {
	sink := &captureSink{}
	dir := &slowBatchDirectory{Directory: memory.New(), delay: 200 * time.Millisecond}
	cs, err := New(
		WithSource(sources.Slice(testRows())),
		WithDirectory(dir),
		WithReportSink(sink),
	)
	require.NoError(t, err)

	rep, err := cs.Run(context.Background(), WithTimeout(50*time.Millisecond))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The submitted batch ran to completion; its writes must show up in
	// the report and the sink even though the run itself timed out.
	require.NotNil(t, rep)
	assert.Equal(t, 2, rep.Counts.Created)
	require.NotNil(t, sink.report)
	assert.Equal(t, rep.RunID, sink.report.RunID)
}

func TestRunTimeoutCancelsPipeline(t *testing.T) {
	cs, err := New(
		WithSource(blockedSource{}),
		WithDirectory(memory.New()),
	)
	require.NoError(t, err)

	_, err = cs.Run(context.Background(), WithTimeout(10*time.Millisecond))
	require.Error(t, err)
}

type captureSink struct {
	report *report.Report
}

func (s *captureSink) Write(r *report.Report) error {
	s.report = r
	return nil
}

type blockedSource struct{}

func (blockedSource) Contacts(ctx context.Context) ([]contacts.RawContact, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// slowBatchDirectory delays batch submission past the run deadline to
// exercise mid-sync timeouts.
type slowBatchDirectory struct {
	*memory.Directory
	delay time.Duration
}

func (d *slowBatchDirectory) BatchSubmit(ctx context.Context, ops []directory.Operation) ([]directory.Result, error) {
	time.Sleep(d.delay)
	return d.Directory.BatchSubmit(ctx, ops)
}
