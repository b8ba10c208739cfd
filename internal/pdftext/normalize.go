package pdftext

import (
	"regexp"
	"strings"
)

var reCRLF = regexp.MustCompile(`\r\n?`)

// Normalize cleans one page of extracted text without touching the spacing
// between words: line endings become \n, no-break spaces become plain spaces
// and trailing blanks are trimmed from each line.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.Join(lines, "\n")
}

// splitLines splits page text into lines, dropping the empty remainder left
// by a terminating newline.
func splitLines(page string) []string {
	if page == "" {
		return nil
	}
	lines := strings.Split(page, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
