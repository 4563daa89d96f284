package tracker

import (
	"fmt"
	"regexp"
)

// FilterSet holds the compiled match patterns for a process lifetime.
// Patterns are tried in the order they were given; the first hit wins.
type FilterSet struct {
	patterns []*regexp.Regexp
}

// CompileFilters compiles the given patterns, prefixing (?i) when
// caseInsensitive is set. A pattern that does not compile is a startup
// error.
func CompileFilters(patterns []string, caseInsensitive bool) (FilterSet, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		expr := pattern
		if caseInsensitive {
			expr = "(?i)" + pattern
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return FilterSet{}, fmt.Errorf("compile filter %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return FilterSet{patterns: compiled}, nil
}

// Len returns the number of compiled patterns.
func (f FilterSet) Len() int { return len(f.patterns) }

// Matches reports whether any pattern matches any of the item's text
// fields (app name, title, body).
func (f FilterSet) Matches(item Item) bool {
	for _, re := range f.patterns {
		if re.MatchString(item.App) || re.MatchString(item.Title) || re.MatchString(item.Body) {
			return true
		}
	}
	return false
}
