package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/incidents-tracker/internal/common"
	"github.com/joseph-ayodele/incidents-tracker/internal/pdftext"
)

// TextSource is satisfied by *pdftext.Extractor.
type TextSource interface {
	Extract(ctx context.Context, path string) (pdftext.Result, error)
}

type PDFAdapter struct {
	source TextSource
	logger *slog.Logger
}

func NewPDFAdapter(s TextSource, l *slog.Logger) *PDFAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &PDFAdapter{
		source: s,
		logger: l,
	}
}

func (a *PDFAdapter) Extract(ctx context.Context, path string) (*Document, error) {
	r, err := a.source.Extract(ctx, path)
	if err != nil {
		a.logger.Error("failed to extract text", "path", path, "method", r.Method, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", common.ErrExtract, path, err)
	}
	for _, w := range r.Warnings {
		a.logger.Warn("extraction warning", "path", path, "warning", w)
	}

	pages := make([]Page, len(r.Pages))
	for i, p := range r.Pages {
		pages[i] = Page{Number: p.Number, Lines: p.Lines}
	}
	return &Document{
		Path:     path,
		Pages:    pages,
		Method:   r.Method,
		Duration: r.Duration,
		Warnings: r.Warnings,
	}, nil
}
