package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncline/contactsync/pkg/errors"
)

func TestNewLoadsConfig(t *testing.T) {
	application, err := New("1.2.3", "abc123", "2026-01-01")
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", application.Version())
	require.NotNil(t, application.Config())
	require.NotNil(t, application.Logger())
}

func TestContactSyncRequiresAPIKey(t *testing.T) {
	application, err := New("dev", "", "")
	require.NoError(t, err)
	application.config.HubSpotAPIKey = ""

	_, err = application.ContactSync()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)
}

func TestSourceSelection(t *testing.T) {
	application, err := New("dev", "", "")
	require.NoError(t, err)
	application.config.HubSpotAPIKey = "token"
	application.config.CSVFile = ""

	dir, err := application.directory()
	require.NoError(t, err)

	// The HubSpot client doubles as the extraction source.
	src, err := application.source(dir)
	require.NoError(t, err)
	assert.Same(t, dir, src)

	application.config.CSVFile = "contacts.csv"
	src, err = application.source(dir)
	require.NoError(t, err)
	assert.NotSame(t, dir, src)
}
