package normalize

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Phone canonicalizes a raw phone value into E.164 using the given
// default region (ISO alpha-2, may be empty). The second return is false
// when the value is non-empty but unparsable.
func (n *Normalizer) Phone(raw, region string) (string, bool) {
	cleaned := cleanPhone(raw)
	if cleaned == "" {
		return "", raw == "" || strings.TrimSpace(raw) == ""
	}

	num, err := phonenumbers.Parse(cleaned, region)
	if err != nil {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}

// cleanPhone strips formatting noise the way source systems commonly
// mangle numbers: everything but digits is dropped (a leading "+" is
// kept), a "00" international prefix becomes "+", and a single leading
// trunk "0" is removed so region-based parsing sees the national number.
func cleanPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case strings.HasPrefix(digits, "+"):
		return digits
	case strings.HasPrefix(digits, "00"):
		return "+" + digits[2:]
	case strings.HasPrefix(digits, "0"):
		return digits[1:]
	}
	return digits
}
