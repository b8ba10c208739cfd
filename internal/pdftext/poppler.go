package pdftext

import (
	"context"
	"fmt"
	"strings"
)

func (e *Extractor) extractPdftotext(ctx context.Context, path string) (Result, error) {
	mode := "-raw"
	if e.cfg.Layout {
		mode = "-layout"
	}
	args := []string{mode, "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
	}
	// pdftotext -raw -enc UTF-8 -eol unix <path> -
	args = append(args, path, "-")

	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		return Result{Method: "pdftotext", Warnings: []string{string(errb)}}, fmt.Errorf("pdftotext: %w", err)
	}
	return Result{Pages: splitPages(string(out)), Method: "pdftotext"}, nil
}

// splitPages cuts pdftotext output on its form-feed page separator. The
// empty segment after the final form feed is not a page.
func splitPages(text string) []PageText {
	chunks := strings.Split(text, "\f")
	if len(chunks) > 1 && strings.TrimSpace(chunks[len(chunks)-1]) == "" {
		chunks = chunks[:len(chunks)-1]
	}
	pages := make([]PageText, 0, len(chunks))
	for i, c := range chunks {
		pages = append(pages, PageText{Number: i + 1, Lines: splitLines(Normalize(c))})
	}
	return pages
}
