package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncline/contactsync/pkg/contacts"
)

func TestMergeGroupsByKey(t *testing.T) {
	in := []contacts.NormalizedContact{
		{SourceID: "1", Email: "jane@co.com", Phone: "+15550100"},
		{SourceID: "2", Email: "jane@co.com", FirstName: "Jane", LastName: "Doe"},
		{SourceID: "3", Email: "bob@co.com"},
	}

	out := Merge(in)

	require.Len(t, out, 2)

	jane := out[0]
	assert.Equal(t, contacts.Key{Kind: contacts.KeyEmail, Value: "jane@co.com"}, jane.Key)
	assert.Equal(t, []string{"1", "2"}, jane.SourceIDs)
	assert.Equal(t, "+15550100", jane.Phone)
	assert.Equal(t, "Jane", jane.FirstName)

	bob := out[1]
	assert.Equal(t, []string{"3"}, bob.SourceIDs)
}

func TestMergeFirstNonAbsentWins(t *testing.T) {
	in := []contacts.NormalizedContact{
		{SourceID: "1", Email: "jane@co.com", Address: "1 First St"},
		{SourceID: "2", Email: "jane@co.com", Address: "2 Second Ave", City: "Paris"},
	}

	out := Merge(in)

	require.Len(t, out, 1)
	assert.Equal(t, "1 First St", out[0].Address, "earlier value must win")
	assert.Equal(t, "Paris", out[0].City, "absent fields fill from later records")
}

func TestMergeIsDeterministic(t *testing.T) {
	in := []contacts.NormalizedContact{
		{SourceID: "1", Email: "jane@co.com", FirstName: "Jane"},
		{SourceID: "2", Email: "jane@co.com", FirstName: "Janet", LastName: "Doe"},
		{SourceID: "3", Email: "bob@co.com", Industry: "retail;media"},
		{SourceID: "4", Email: "bob@co.com", Industry: "media;finance"},
	}

	first := Merge(in)
	second := Merge(in)

	assert.Equal(t, first, second)
}

func TestMergeIndustryUnion(t *testing.T) {
	in := []contacts.NormalizedContact{
		{SourceID: "1", Email: "jane@co.com", Industry: "retail;media"},
		{SourceID: "2", Email: "jane@co.com", Industry: "media;finance"},
	}

	out := Merge(in)

	require.Len(t, out, 1)
	assert.Equal(t, "finance;media;retail", out[0].Industry)
}

func TestMergeUnresolvableSingletons(t *testing.T) {
	in := []contacts.NormalizedContact{
		{SourceID: "1"},
		{SourceID: "2"},
	}

	out := Merge(in)

	require.Len(t, out, 2, "unresolvable records must never merge")
	assert.False(t, out[0].Key.Resolvable())
	assert.False(t, out[1].Key.Resolvable())
}

func TestMergeEmitsEmptyRecords(t *testing.T) {
	out := Merge([]contacts.NormalizedContact{{SourceID: "only"}})

	require.Len(t, out, 1, "a record with no identity fields is still emitted")
	assert.Equal(t, []string{"only"}, out[0].SourceIDs)
}

func TestMergeSameEmailAndPhone(t *testing.T) {
	// Two raw contacts that normalized to the same email and phone merge
	// into one canonical contact absorbing both source ids.
	in := []contacts.NormalizedContact{
		{SourceID: "a", Email: "jane@co.com", Phone: "+15550100"},
		{SourceID: "b", Email: "jane@co.com", Phone: "+15550100"},
	}

	out := Merge(in)

	require.Len(t, out, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, out[0].SourceIDs)
}
