package utils

import (
	"strings"
)

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail is the canonical form used for uniqueness and login lookups.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
