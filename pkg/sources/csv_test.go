package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVContacts(t *testing.T) {
	path := writeCSV(t, `source_id,email,first_name,last_name,country_hint,created_at,notes
s1,ada@example.com,Ada,Lovelace,GB,2024-03-01,ignored
s2,grace@example.com,Grace,,,,"also, ignored"
`)

	rows, err := (&CSV{Path: path}).Contacts(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "s1", rows[0].SourceID)
	assert.Equal(t, "ada@example.com", rows[0].Email)
	assert.Equal(t, "Lovelace", rows[0].LastName)
	assert.Equal(t, "GB", rows[0].CountryHint)
	assert.Equal(t, 2024, rows[0].CreatedAt.Year())

	// Missing columns leave fields absent; unknown columns are ignored.
	assert.Empty(t, rows[1].LastName)
	assert.Empty(t, rows[1].Phone)
	assert.True(t, rows[1].CreatedAt.IsZero())
}

func TestCSVShortRows(t *testing.T) {
	path := writeCSV(t, `source_id,email,phone
s1,ada@example.com
`)

	rows, err := (&CSV{Path: path}).Contacts(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Phone)
}

func TestCSVMissingFile(t *testing.T) {
	_, err := (&CSV{Path: "does-not-exist.csv"}).Contacts(context.Background())
	require.Error(t, err)
}

func TestCSVEmptyFile(t *testing.T) {
	path := writeCSV(t, "")
	rows, err := (&CSV{Path: path}).Contacts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}
