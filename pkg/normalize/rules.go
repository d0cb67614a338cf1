package normalize

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/syncline/contactsync/pkg/errors"
)

// Rules is the explicit configuration input for normalization. A run's
// behavior is fully determined by the rules it was given; nothing here is
// inferred at runtime.
type Rules struct {
	// DomainTypos maps known email domain misspellings to the intended
	// domain, e.g. "gmial.com" -> "gmail.com".
	DomainTypos map[string]string `yaml:"domain_typos"`

	// AliasSeparators are local-part separators to strip, e.g. "+" turns
	// jane+crm@co.com into jane@co.com.
	AliasSeparators []string `yaml:"alias_separators"`

	// DefaultRegion is the ISO alpha-2 region used to parse phone numbers
	// when a contact carries no usable country hint.
	DefaultRegion string `yaml:"default_region"`

	// Places is a static place -> ISO alpha-2 table consulted before any
	// remote geocoding, e.g. "paris" -> "FR".
	Places map[string]string `yaml:"places"`
}

// DefaultRules returns rules with the alias separator and typo mappings
// most source systems need. Callers with stricter requirements should
// load an explicit rules file instead.
func DefaultRules() *Rules {
	return &Rules{
		DomainTypos: map[string]string{
			"gmial.com":   "gmail.com",
			"gamil.com":   "gmail.com",
			"hotmial.com": "hotmail.com",
			"yaho.com":    "yahoo.com",
		},
		AliasSeparators: []string{"+"},
	}
}

// LoadRules reads a YAML rules file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("normalize", "reading rules file "+path, err)
	}
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &rules, nil
}
