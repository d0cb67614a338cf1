package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syncline/contactsync/pkg/contacts"
)

func TestKeyPrecedence(t *testing.T) {
	tests := []struct {
		name string
		in   contacts.NormalizedContact
		want contacts.Key
	}{
		{
			"email wins over everything",
			contacts.NormalizedContact{Email: "jane@co.com", Phone: "+15550100", FirstName: "Jane", LastName: "Doe", Country: "US"},
			contacts.Key{Kind: contacts.KeyEmail, Value: "jane@co.com"},
		},
		{
			"phone when email absent",
			contacts.NormalizedContact{Phone: "+15550100", FirstName: "Jane", Country: "US"},
			contacts.Key{Kind: contacts.KeyPhone, Value: "+15550100"},
		},
		{
			"name and country when no email or phone",
			contacts.NormalizedContact{FirstName: "Jane", LastName: "Doe", Country: "US"},
			contacts.Key{Kind: contacts.KeyName, Value: "jane doe|US"},
		},
		{
			"unparsable phone is not an identity",
			contacts.NormalizedContact{SourceID: "9", Phone: "", PhoneUnparsable: true, RawPhone: "abc"},
			contacts.Key{Kind: contacts.KeyUnresolved, Value: "9"},
		},
		{
			"name without country is unresolvable",
			contacts.NormalizedContact{SourceID: "5", FirstName: "Jane"},
			contacts.Key{Kind: contacts.KeyUnresolved, Value: "5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.in))
		})
	}
}

func TestUnresolvedKeysNeverMatch(t *testing.T) {
	a := Key(contacts.NormalizedContact{SourceID: "1"})
	b := Key(contacts.NormalizedContact{SourceID: "2"})

	assert.False(t, a.Resolvable())
	assert.False(t, b.Resolvable())
	assert.NotEqual(t, a, b)
}

func TestSentinelWithoutSourceIDIsUnique(t *testing.T) {
	a := Key(contacts.NormalizedContact{})
	b := Key(contacts.NormalizedContact{})
	assert.NotEqual(t, a, b)
}
