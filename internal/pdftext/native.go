package pdftext

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

func (e *Extractor) extractNative(path string) (Result, error) {
	pages, err := e.readNative(path, e.cfg.MaxPages)
	if err != nil {
		return Result{Method: "pdf-native"}, err
	}
	return Result{Pages: pages, Method: "pdf-native"}, nil
}

// readNativePages reads the embedded text layer row by row.
func readNativePages(path string, maxPages int) ([]PageText, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	n := r.NumPage()
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}

	pages := make([]PageText, 0, n)
	for i := 1; i <= n; i++ {
		page := PageText{Number: i}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, page)
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("read pdf page %d: %w", i, err)
		}
		var b strings.Builder
		for _, row := range rows {
			b.WriteString(rowText(row.Content))
			b.WriteByte('\n')
		}
		page.Lines = splitLines(Normalize(b.String()))
		pages = append(pages, page)
	}
	return pages, nil
}

// rowText joins the text runs of one row. Runs separated by a horizontal gap
// wider than a fraction of the font size get a single space between them.
func rowText(runs pdf.TextHorizontal) string {
	var b strings.Builder
	var prevEnd float64
	for i, t := range runs {
		if i > 0 && t.X-prevEnd > gapThreshold(t.FontSize) &&
			!strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(t.S, " ") {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return b.String()
}

func gapThreshold(fontSize float64) float64 {
	if g := fontSize * 0.15; g > 0.5 {
		return g
	}
	return 0.5
}
