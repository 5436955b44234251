// Package symptom canonicalizes user-reported symptoms and relates them to
// the fixed symptom vocabulary the local classifier understands.
package symptom

import (
	"strings"
	"unicode"
)

// Canonical lowercases token, turns underscores into spaces and trims it.
func Canonical(token string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(token), "_", " "))
}

// Normalize canonicalizes tokens, drops empties and case-insensitive
// duplicates, and keeps first-seen order.
func Normalize(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))

	for _, token := range tokens {
		s := Canonical(token)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

// ParseList splits a comma-separated symptom string as typed into a form,
// stripping stray list punctuation such as brackets and quotes.
func ParseList(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		s := strings.Trim(strings.TrimSpace(part), "[]' ")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SplitInput splits free text on commas, semicolons and whitespace.
func SplitInput(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}
