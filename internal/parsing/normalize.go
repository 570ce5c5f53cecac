package parsing

import (
	"strings"
	"unicode"
)

// TitleCase upper-cases every letter that follows a non-letter and lower-cases the rest.
// "PHYSICS 1 LAB" becomes "Physics 1 Lab".
func TitleCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				sb.WriteRune(unicode.ToLower(r))
			} else {
				sb.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		sb.WriteRune(r)
		prevLetter = false
	}
	return sb.String()
}

// NormalizeDisplayName converts the portal's "LAST, FIRST" navbar name into "First Last".
func NormalizeDisplayName(raw string) string {
	name := strings.TrimSpace(raw)
	if last, first, ok := strings.Cut(name, ","); ok {
		name = strings.TrimSpace(first) + " " + strings.TrimSpace(last)
	}
	return TitleCase(strings.TrimSpace(name))
}

// CleanText collapses internal whitespace runs to single spaces and trims the ends.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
