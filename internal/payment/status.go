package payment

import "strings"

// StatusSet is a provider's set of "paid" synonyms.
type StatusSet map[string]struct{}

func PaidStatuses(statuses ...string) StatusSet {
	s := make(StatusSet, len(statuses))
	for _, st := range statuses {
		s[normalizeStatus(st)] = struct{}{}
	}
	return s
}

// Match compares case-insensitively after trimming whitespace.
func (s StatusSet) Match(status string) bool {
	_, ok := s[normalizeStatus(status)]
	return ok
}

func normalizeStatus(status string) string {
	return strings.ToUpper(strings.TrimSpace(status))
}
