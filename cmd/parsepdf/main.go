package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/incidents-tracker/internal/common"
	"github.com/joseph-ayodele/incidents-tracker/internal/extract"
	"github.com/joseph-ayodele/incidents-tracker/internal/parser"
	"github.com/joseph-ayodele/incidents-tracker/internal/pdftext"
)

// parsepdf runs extraction and parsing on a local report without touching
// the store. Useful when a new report layout stops matching.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "parsepdf <report.pdf>")
		os.Exit(2)
	}
	path := os.Args[1]
	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	lines := extract.NewPDFAdapter(pdftext.NewExtractor(pdftext.Config{
		Method:    cfg.PDF.Method,
		Pdftotext: cfg.PDF.Pdftotext,
		Layout:    cfg.PDF.Layout,
		MaxPages:  cfg.PDF.MaxPages,
	}, logger), logger)

	start := time.Now()
	doc, err := lines.Extract(ctx, path)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err)
		os.Exit(1)
	}

	// per-line decisions are suppressed; only the totals are printed
	quiet := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	p := parser.NewParser(parser.WithLogger(quiet), parser.WithNoiseSubstrings(cfg.Parse.NoiseSubstrings...))
	incidents, stats, err := p.Parse(doc)
	if err != nil {
		logger.Error("parse failed", "path", path, "error", err)
		os.Exit(1)
	}

	logger.Info("parse OK",
		"path", path,
		"method", doc.Method,
		"pages", stats.Pages,
		"lines", stats.Lines,
		"incidents", len(incidents),
		"noise", stats.Noise,
		"non_conforming", stats.NonConforming,
		"warnings", len(doc.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
