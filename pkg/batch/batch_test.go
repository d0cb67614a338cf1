package batch_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncline/contactsync/pkg/batch"
	"github.com/syncline/contactsync/pkg/contacts"
	"github.com/syncline/contactsync/pkg/directory"
	"github.com/syncline/contactsync/pkg/errors"
)

// scriptedDirectory returns canned responses per BatchSubmit call.
type scriptedDirectory struct {
	mu         sync.Mutex
	submits    int
	batchSizes []int
	respond    func(call int, ops []directory.Operation) ([]directory.Result, error)
	batchLimit int
}

func (d *scriptedDirectory) FindByEmail(context.Context, string) ([]directory.Contact, error) {
	return nil, nil
}
func (d *scriptedDirectory) FindByPhone(context.Context, string) ([]directory.Contact, error) {
	return nil, nil
}
func (d *scriptedDirectory) FindByName(context.Context, string, string) ([]directory.Contact, error) {
	return nil, nil
}
func (d *scriptedDirectory) Create(context.Context, map[string]string) (contacts.RemoteID, error) {
	return "", errors.New("not used")
}
func (d *scriptedDirectory) Update(context.Context, contacts.RemoteID, map[string]string) error {
	return errors.New("not used")
}

func (d *scriptedDirectory) BatchSubmit(_ context.Context, ops []directory.Operation) ([]directory.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	call := d.submits
	d.submits++
	d.batchSizes = append(d.batchSizes, len(ops))
	return d.respond(call, ops)
}

func (d *scriptedDirectory) BatchLimit() int {
	if d.batchLimit > 0 {
		return d.batchLimit
	}
	return 100
}

func allCreated(_ int, ops []directory.Operation) ([]directory.Result, error) {
	results := make([]directory.Result, len(ops))
	for i := range ops {
		results[i] = directory.Result{RemoteID: contacts.RemoteID(fmt.Sprintf("crm-%d", i))}
	}
	return results, nil
}

func createItem(email string) contacts.ChangeItem {
	return contacts.ChangeItem{
		Contact: &contacts.CanonicalContact{
			Key:       contacts.Key{Kind: contacts.KeyEmail, Value: email},
			Email:     email,
			SourceIDs: []string{email},
		},
		Disposition: contacts.DispositionCreate,
		Fields:      map[string]string{contacts.PropEmail: email},
	}
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestSyncPartialFailure(t *testing.T) {
	// A batch of 10 where the remote rejects items 3 and 7 with a
	// validation error: exactly those two fail and nothing is retried.
	dir := &scriptedDirectory{
		respond: func(_ int, ops []directory.Operation) ([]directory.Result, error) {
			results := make([]directory.Result, len(ops))
			for i := range ops {
				if i == 3 || i == 7 {
					results[i].Err = errors.NewValidationError("email", ops[i].Properties["email"], "bad email")
					continue
				}
				results[i].RemoteID = contacts.RemoteID(fmt.Sprintf("crm-%d", i))
			}
			return results, nil
		},
	}
	s := batch.New(dir, batch.Config{}, batch.WithSleep(noSleep))

	items := make([]contacts.ChangeItem, 10)
	for i := range items {
		items[i] = createItem(fmt.Sprintf("user%d@co.com", i))
	}

	outcomes, err := s.Sync(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, outcomes, 10)

	for i, outcome := range outcomes {
		if i == 3 || i == 7 {
			assert.Equal(t, contacts.OutcomeFailed, outcome.Status, "item %d", i)
			assert.Equal(t, contacts.FailureValidation, outcome.Failure, "item %d", i)
		} else {
			assert.Equal(t, contacts.OutcomeSucceeded, outcome.Status, "item %d", i)
		}
	}
	assert.Equal(t, 1, dir.submits, "failed items must not be retried in-run")
}

func TestSyncRateLimitRetriesThenSucceeds(t *testing.T) {
	dir := &scriptedDirectory{
		respond: func(call int, ops []directory.Operation) ([]directory.Result, error) {
			if call < 2 {
				return nil, errors.NewAPIError("hubspot", 429, "throttled")
			}
			return allCreated(call, ops)
		},
	}

	var slept []time.Duration
	s := batch.New(dir, batch.Config{Backoff: time.Second, MaxBackoff: 8 * time.Second},
		batch.WithSleep(func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}))

	outcomes, err := s.Sync(context.Background(), []contacts.ChangeItem{createItem("jane@co.com")})
	require.NoError(t, err)

	assert.Equal(t, contacts.OutcomeSucceeded, outcomes[0].Status)
	assert.Equal(t, 3, dir.submits)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept,
		"backoff must grow exponentially")
}

func TestSyncRateLimitExhaustion(t *testing.T) {
	dir := &scriptedDirectory{
		respond: func(int, []directory.Operation) ([]directory.Result, error) {
			return nil, errors.NewAPIError("hubspot", 429, "throttled")
		},
	}
	s := batch.New(dir, batch.Config{MaxRateLimitRetries: 2}, batch.WithSleep(noSleep))

	outcomes, err := s.Sync(context.Background(), []contacts.ChangeItem{createItem("jane@co.com")})
	require.NoError(t, err)

	assert.Equal(t, contacts.OutcomeFailed, outcomes[0].Status)
	assert.Equal(t, contacts.FailureRateLimitExhaust, outcomes[0].Failure)
	assert.Equal(t, 3, dir.submits, "initial attempt plus two retries")
}

func TestSyncTimeoutHasSmallerRetryBudget(t *testing.T) {
	dir := &scriptedDirectory{
		respond: func(int, []directory.Operation) ([]directory.Result, error) {
			return nil, &errors.APIError{Directory: "hubspot", Message: "deadline", Err: errors.ErrTimeout}
		},
	}
	s := batch.New(dir, batch.Config{MaxRateLimitRetries: 5, MaxTransientRetries: 1}, batch.WithSleep(noSleep))

	outcomes, err := s.Sync(context.Background(), []contacts.ChangeItem{createItem("jane@co.com")})
	require.NoError(t, err)

	assert.Equal(t, contacts.FailureTimeout, outcomes[0].Failure)
	assert.Equal(t, 2, dir.submits)
}

func TestSyncSkipsNeverReachDirectory(t *testing.T) {
	dir := &scriptedDirectory{respond: allCreated}
	s := batch.New(dir, batch.Config{}, batch.WithSleep(noSleep))

	items := []contacts.ChangeItem{
		{
			Contact:     &contacts.CanonicalContact{Key: contacts.Key{Kind: contacts.KeyUnresolved, Value: "1"}},
			Disposition: contacts.DispositionSkip,
			SkipReason:  contacts.SkipUnresolvable,
		},
	}

	outcomes, err := s.Sync(context.Background(), items)
	require.NoError(t, err)

	assert.Equal(t, contacts.OutcomeSkipped, outcomes[0].Status)
	assert.Equal(t, contacts.SkipUnresolvable, outcomes[0].SkipReason)
	assert.Zero(t, dir.submits)
}

func TestSyncBatchPartitioning(t *testing.T) {
	dir := &scriptedDirectory{respond: allCreated, batchLimit: 4}
	s := batch.New(dir, batch.Config{BatchSize: 10, Concurrency: 1}, batch.WithSleep(noSleep))

	items := make([]contacts.ChangeItem, 9)
	for i := range items {
		items[i] = createItem(fmt.Sprintf("user%d@co.com", i))
	}

	outcomes, err := s.Sync(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, outcomes, 9)

	assert.Equal(t, []int{4, 4, 1}, dir.batchSizes,
		"batch size must be clamped to the directory limit")
}

func TestSyncWritesBackCreatedRemoteIDs(t *testing.T) {
	dir := &scriptedDirectory{
		respond: func(_ int, ops []directory.Operation) ([]directory.Result, error) {
			return []directory.Result{{RemoteID: "crm-new"}}, nil
		},
	}
	s := batch.New(dir, batch.Config{}, batch.WithSleep(noSleep))

	item := createItem("jane@co.com")
	outcomes, err := s.Sync(context.Background(), []contacts.ChangeItem{item})
	require.NoError(t, err)

	assert.Equal(t, contacts.RemoteID("crm-new"), outcomes[0].RemoteID)
	assert.Equal(t, contacts.RemoteID("crm-new"), item.Contact.RemoteID,
		"new remote ids are written back onto the canonical record")
}

func TestSyncCanceledBeforeSubmission(t *testing.T) {
	dir := &scriptedDirectory{respond: allCreated}
	s := batch.New(dir, batch.Config{}, batch.WithSleep(noSleep))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := s.Sync(ctx, []contacts.ChangeItem{createItem("jane@co.com")})

	assert.Error(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, contacts.OutcomeFailed, outcomes[0].Status)
	assert.Equal(t, contacts.FailureCanceled, outcomes[0].Failure)
	assert.Zero(t, dir.submits, "no batch may be submitted after cancellation")
}
