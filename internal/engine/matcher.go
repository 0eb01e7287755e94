package engine

import "strings"

// Matcher decides whether a line contains the search pattern.
// It holds no mutable state and is safe for concurrent use by any number
// of workers without synchronization.
type Matcher struct {
	pattern    string
	ignoreCase bool
}

// NewMatcher builds a matcher for the given pattern. For case-insensitive
// matching the pattern is lowercased here, exactly once; lines are folded
// per comparison but the pattern never is again.
func NewMatcher(pattern string, ignoreCase bool) *Matcher {
	if ignoreCase {
		pattern = strings.ToLower(pattern)
	}
	return &Matcher{pattern: pattern, ignoreCase: ignoreCase}
}

// Match reports whether line contains the pattern.
func (m *Matcher) Match(line string) bool {
	if m.ignoreCase {
		return strings.Contains(strings.ToLower(line), m.pattern)
	}
	return strings.Contains(line, m.pattern)
}

// Pattern returns the comparison pattern, lowercased when the matcher is
// case-insensitive.
func (m *Matcher) Pattern() string {
	return m.pattern
}
