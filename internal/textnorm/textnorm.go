// Package textnorm normalizes user-supplied and spreadsheet-stored text.
// Every comparison of usernames, passwords, roles and cell values goes
// through this package so that case, whitespace runs and Unicode composition
// differences never make two equal values look different.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var spaceRun = regexp.MustCompile(`\s+`)

// Clean canonicalizes a value: NFKC normalization, non-breaking space to
// ordinary space, zero-width space removed, newlines flattened, whitespace
// runs collapsed, trimmed. Case is preserved.
func Clean(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, "​", "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Normalize is the comparison form: Clean plus lower-casing.
func Normalize(s string) string {
	return strings.ToLower(Clean(s))
}

// CleanPassword cleans a password cell. Numeric-looking passwords come back
// from spreadsheet round-trips with a trailing ".0"; strip it so the user
// can still log in with what they typed.
func CleanPassword(s string) string {
	s = Clean(s)
	return strings.TrimSuffix(s, ".0")
}

// SafeCell guards a cell value against spreadsheet formula injection by
// prefixing an apostrophe when the value would be interpreted as a formula.
func SafeCell(s string) string {
	if strings.HasPrefix(s, "=") || strings.HasPrefix(s, "+") ||
		strings.HasPrefix(s, "-") || strings.HasPrefix(s, "@") {
		return "'" + s
	}
	return s
}
