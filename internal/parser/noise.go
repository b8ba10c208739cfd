package parser

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

const reasonBlank = "blank"

// NoiseFilter recognises structural lines (page headers, banners, blank
// lines) by substring containment. A line that merely mentions one of the
// substrings anywhere is noise. Safe for concurrent use once built.
type NoiseFilter struct {
	matcher  *ahocorasick.Matcher
	patterns []string
}

// NewNoiseFilter builds a filter over substrings. Empty and repeated
// substrings are ignored.
func NewNoiseFilter(substrings []string) *NoiseFilter {
	seen := make(map[string]struct{}, len(substrings))
	patterns := make([]string, 0, len(substrings))
	for _, s := range substrings {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		patterns = append(patterns, s)
	}

	f := &NoiseFilter{patterns: patterns}
	if len(patterns) > 0 {
		f.matcher = ahocorasick.NewStringMatcher(patterns)
	}
	return f
}

// Patterns returns the effective substrings in configuration order.
func (f *NoiseFilter) Patterns() []string {
	return append([]string(nil), f.patterns...)
}

// Skip reports whether line is noise and why: "blank", or "header:<substring>"
// naming the earliest configured substring found in the line.
func (f *NoiseFilter) Skip(line string) (bool, string) {
	if strings.TrimSpace(line) == "" {
		return true, reasonBlank
	}
	if f.matcher == nil {
		return false, ""
	}
	hits := f.matcher.MatchThreadSafe([]byte(line))
	if len(hits) == 0 {
		return false, ""
	}
	first := hits[0]
	for _, h := range hits[1:] {
		if h < first {
			first = h
		}
	}
	return true, "header:" + f.patterns[first]
}
