package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticLookup(t *testing.T) {
	static := NewStatic(map[string]string{
		"Paris":   "fr",
		" berlin": "DE",
	})

	code, err := static.Lookup(context.Background(), "paris")
	require.NoError(t, err)
	assert.Equal(t, "FR", code)

	code, err = static.Lookup(context.Background(), "Berlin ")
	require.NoError(t, err)
	assert.Equal(t, "DE", code)

	code, err = static.Lookup(context.Background(), "atlantis")
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestChainFallsThrough(t *testing.T) {
	chain := Chain{
		NewStatic(map[string]string{"paris": "FR"}),
		NewStatic(map[string]string{"berlin": "DE"}),
	}

	code, err := chain.Lookup(context.Background(), "berlin")
	require.NoError(t, err)
	assert.Equal(t, "DE", code)

	code, err = chain.Lookup(context.Background(), "atlantis")
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestNominatimLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "athens", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		var place nominatimPlace
		place.Address.CountryCode = "gr"
		json.NewEncoder(w).Encode([]nominatimPlace{place})
	}))
	defer server.Close()

	locator := NewNominatim(server.URL)
	code, err := locator.Lookup(context.Background(), "'athens'")
	require.NoError(t, err)
	assert.Equal(t, "GR", code)
}

func TestNominatimNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]nominatimPlace{})
	}))
	defer server.Close()

	locator := NewNominatim(server.URL)
	code, err := locator.Lookup(context.Background(), "atlantis")
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestNominatimDoesNotRetryBadRequest(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "bad query", http.StatusBadRequest)
	}))
	defer server.Close()

	locator := NewNominatim(server.URL)
	_, err := locator.Lookup(context.Background(), "paris")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
