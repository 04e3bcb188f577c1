package models

import "github.com/desertthunder/songpush/internal/shared"

// SeenSet holds the normalized queries and suggestions the user has already seen this session.
//
// It is not safe for concurrent use; only the UI goroutine touches it.
type SeenSet struct {
	items map[string]struct{}
}

// NewSeenSet creates an empty set.
func NewSeenSet() *SeenSet {
	return &SeenSet{items: make(map[string]struct{})}
}

// Add records each value, ignoring blanks.
func (s *SeenSet) Add(values ...string) {
	for _, v := range values {
		if key := shared.NormalizeKey(v); key != "" {
			s.items[key] = struct{}{}
		}
	}
}

// Contains reports whether v was added before, ignoring case and spacing.
func (s *SeenSet) Contains(v string) bool {
	_, ok := s.items[shared.NormalizeKey(v)]
	return ok
}

// Len returns the number of distinct entries.
func (s *SeenSet) Len() int {
	return len(s.items)
}

// Filter returns the values not yet seen, in order, without duplicates and capped at limit.
// A limit of zero or less means no cap.
func (s *SeenSet) Filter(values []string, limit int) []string {
	out := make([]string, 0, len(values))
	picked := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := shared.NormalizeKey(v)
		if key == "" {
			continue
		}
		if _, ok := s.items[key]; ok {
			continue
		}
		if _, ok := picked[key]; ok {
			continue
		}
		picked[key] = struct{}{}
		out = append(out, v)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
