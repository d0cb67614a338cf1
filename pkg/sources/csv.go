package sources

import (
	"context"
	"encoding/csv"
	"os"
	"strings"
	"time"

	"github.com/syncline/contactsync/pkg/contacts"
	"github.com/syncline/contactsync/pkg/errors"
)

// CSV reads raw contacts from a CSV file with a header row. Column
// names match the RawContact field tags (source_id, email, phone,
// first_name, last_name, country_hint, address, industry, created_at);
// unknown columns are ignored and missing columns leave fields absent.
type CSV struct {
	Path string
}

// Contacts implements Source.
func (c *CSV) Contacts(_ context.Context) ([]contacts.RawContact, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, errors.NewConfigError("csv", "opening "+c.Path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", c.Path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	rows := make([]contacts.RawContact, 0, len(records)-1)
	for _, record := range records[1:] {
		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return record[idx]
		}

		raw := contacts.RawContact{
			SourceID:    field("source_id"),
			Email:       field("email"),
			Phone:       field("phone"),
			FirstName:   field("first_name"),
			LastName:    field("last_name"),
			CountryHint: field("country_hint"),
			Address:     field("address"),
			Industry:    field("industry"),
		}
		if created := field("created_at"); created != "" {
			if ts, err := time.Parse("2006-01-02", created); err == nil {
				raw.CreatedAt = ts
			}
		}
		rows = append(rows, raw)
	}
	return rows, nil
}
