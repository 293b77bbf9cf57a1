package taxonomy

import "strings"

// Slugify normalizes s into the restricted slug form used for languages,
// tags, frameworks and topics: lowercase, internal whitespace runs become a
// single hyphen, everything outside [a-z0-9-] is stripped, repeated hyphens
// collapse, leading/trailing hyphens are trimmed. Idempotent and total.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			inSpace = true
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			if inSpace {
				b.WriteByte('-')
				inSpace = false
			}
			b.WriteRune(r)
		default:
			// stripped; a pending space still separates surviving runs
		}
	}

	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return strings.Trim(out, "-")
}

// NormalizeSet slugifies every element, drops empties and deduplicates,
// keeping first-seen order.
func NormalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		slug := Slugify(v)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}

// DeriveKeywords recomputes the derived keyword set from scratch: title and
// summary tokens plus the already-normalized taxonomy sets, slugified and
// deduplicated. Never merged with a stale prior value.
func DeriveKeywords(title, summary string, sets ...[]string) []string {
	tokens := append(strings.Fields(title), strings.Fields(summary)...)
	for _, set := range sets {
		tokens = append(tokens, set...)
	}
	return NormalizeSet(tokens)
}
