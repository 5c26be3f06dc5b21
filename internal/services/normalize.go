package services

import (
	"regexp"
	"strings"
)

// allActiveKey is the derived cache key under which full active listings are
// stored, next to the per-id entries of the same kind.
const allActiveKey = "allActive"

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)

// phoneJunkRE strips formatting characters commonly pasted into phone fields.
var phoneJunkRE = regexp.MustCompile(`[\s()\-.]+`)

// normalizeName trims whitespace and collapses internal runs to one space.
func normalizeName(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// normalizePhone strips spaces, dots, dashes and parentheses so that phone
// uniqueness compares digits, not formatting.
func normalizePhone(s string) string {
	return phoneJunkRE.ReplaceAllString(strings.TrimSpace(s), "")
}
