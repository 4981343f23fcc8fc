package cohort

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail lower-cases and trims an email address for matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName lower-cases a display name, trims it and collapses internal
// whitespace to single spaces. Composed and decomposed accents compare equal.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFC.String(name))), " ")
}

// SplitName splits a display name into first and last name on the first run
// of whitespace. Single-word names have an empty last name.
func SplitName(displayName string) (first, last string) {
	parts := strings.Fields(displayName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
