package domain

import "strings"

// Matches is the name-matching predicate used everywhere in the core:
// a case-insensitive substring test in either direction.
func Matches(a, b string) bool {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

// MatchesAny reports whether name Matches at least one of others.
func MatchesAny(name string, others []string) bool {
	for _, o := range others {
		if Matches(name, o) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
