package normalize

import (
	"regexp"
	"strings"
)

// emailPattern matches the first email-looking token in free-form text,
// so "Jane Doe <jane@co.com>" yields jane@co.com.
var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Email canonicalizes a raw email value: extract the first email token,
// lower-case it, strip configured alias suffixes from the local part, and
// collapse known domain typos. Returns "" when no syntactically valid
// email can be derived.
func (n *Normalizer) Email(raw string) string {
	match := emailPattern.FindString(strings.TrimSpace(raw))
	if match == "" {
		return ""
	}
	email := strings.ToLower(match)

	at := strings.LastIndex(email, "@")
	local, domain := email[:at], email[at+1:]

	for _, sep := range n.rules.AliasSeparators {
		if idx := strings.Index(local, sep); idx > 0 {
			local = local[:idx]
		}
	}

	if fixed, ok := n.rules.DomainTypos[domain]; ok {
		domain = fixed
	}

	// The pattern guarantees a dotted domain; the alias strip cannot
	// empty the local part because idx > 0 is required.
	return local + "@" + domain
}
