package parser

import (
	"fmt"
	"regexp"
)

// LinePattern is the five-field shape of an incident line:
// a date/time, the incident number, a greedy location+nature span and the
// trailing ORI token. Greedy middle means the ORI is always the last
// whitespace-delimited token; trailing whitespace after it is tolerated.
const LinePattern = `^(?P<time>\d+/\d+/\d+\s\d+:\d+)\s+(?P<number>\S+)\s+(?P<middle>.*)\s+(?P<ori>\S+)\s*$`

// fieldSpace is what \s matches in LinePattern. The splitter breaks the
// middle span on the same bytes, so \v or U+2003 stay inside a token in both.
const fieldSpace = "\t\n\f\r "

// Fields are the raw captures of a matching line.
type Fields struct {
	Time   string
	Number string
	Middle string
	ORI    string
}

// Grammar is a compiled line pattern with named captures time, number,
// middle and ori.
type Grammar struct {
	re *regexp.Regexp

	iTime, iNumber, iMiddle, iORI int
}

// NewGrammar compiles pattern and checks that every named capture exists.
func NewGrammar(pattern string) (*Grammar, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile line pattern: %w", err)
	}
	g := &Grammar{
		re:      re,
		iTime:   re.SubexpIndex("time"),
		iNumber: re.SubexpIndex("number"),
		iMiddle: re.SubexpIndex("middle"),
		iORI:    re.SubexpIndex("ori"),
	}
	for name, idx := range map[string]int{"time": g.iTime, "number": g.iNumber, "middle": g.iMiddle, "ori": g.iORI} {
		if idx < 0 {
			return nil, fmt.Errorf("line pattern is missing capture %q", name)
		}
	}
	return g, nil
}

var defaultGrammar = mustGrammar(LinePattern)

// DefaultGrammar returns the grammar for LinePattern.
func DefaultGrammar() *Grammar { return defaultGrammar }

func mustGrammar(pattern string) *Grammar {
	g, err := NewGrammar(pattern)
	if err != nil {
		panic(err)
	}
	return g
}

// Match decomposes line; ok is false when the line does not have the shape.
func (g *Grammar) Match(line string) (Fields, bool) {
	m := g.re.FindStringSubmatch(line)
	if m == nil {
		return Fields{}, false
	}
	return Fields{
		Time:   m[g.iTime],
		Number: m[g.iNumber],
		Middle: m[g.iMiddle],
		ORI:    m[g.iORI],
	}, true
}

// String returns the source pattern.
func (g *Grammar) String() string { return g.re.String() }
