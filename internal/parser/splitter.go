package parser

import "strings"

// Splitter divides the middle span of a line into location and nature.
type Splitter interface {
	Split(middle string) (location, nature string)
}

// SplitterFunc adapts a function to Splitter.
type SplitterFunc func(middle string) (location, nature string)

func (f SplitterFunc) Split(middle string) (string, string) { return f(middle) }

// LastSpace treats the segment after the last fieldSpace byte as the nature
// and everything before it as the location. A span without whitespace is
// all location with an empty nature. Multi-word natures are mis-split; that
// is a known limitation of this heuristic.
var LastSpace Splitter = SplitterFunc(lastSpaceSplit)

func lastSpaceSplit(middle string) (string, string) {
	i := strings.LastIndexAny(middle, fieldSpace)
	if i < 0 {
		return middle, ""
	}
	return middle[:i], middle[i+1:]
}
