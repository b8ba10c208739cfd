package extract

import (
	"context"
	"time"
)

// LineExtractor is Stage 1: document file -> pages of text lines.
type LineExtractor interface {
	Extract(ctx context.Context, path string) (*Document, error)
}

// Page is one page of extracted text, lines in reading order.
type Page struct {
	Number int
	Lines  []string
}

// Document is the ordered page sequence handed to the record parser.
type Document struct {
	Path     string
	Pages    []Page
	Method   string // "pdf-native" | "pdftotext"
	Duration time.Duration
	Warnings []string
}

// LineCount is the total number of lines across all pages.
func (d *Document) LineCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, p := range d.Pages {
		n += len(p.Lines)
	}
	return n
}
