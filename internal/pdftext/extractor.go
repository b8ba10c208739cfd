package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/incidents-tracker/constants"
)

const (
	MethodAuto      = "auto"
	MethodNative    = "native"
	MethodPdftotext = "pdftotext"
)

type Config struct {
	Method    string // MethodAuto | MethodNative | MethodPdftotext; default auto
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Layout    bool   // pass -layout instead of -raw to pdftotext
	MaxPages  int    // 0 = no limit
}

// PageText is the text of one page, split into lines.
type PageText struct {
	Number int
	Lines  []string
}

type Result struct {
	Pages    []PageText
	Method   string // "pdf-native" | "pdftotext"
	Duration time.Duration
	Warnings []string
}

// LineCount is the total number of lines across all pages.
func (r Result) LineCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Lines)
	}
	return n
}

type Extractor struct {
	cfg        Config
	runner     Runner
	readNative func(path string, maxPages int) ([]PageText, error)
	logger     *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Method == "" {
		cfg.Method = MethodAuto
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{
		cfg:        cfg,
		runner:     execRunner{logger: logger},
		readNative: readNativePages,
		logger:     logger,
	}
}

// Extract returns the text lines of every page of the PDF at path. In auto
// mode the embedded text layer is read in-process first and pdftotext is
// only used when that fails or yields no lines.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if constants.MapExtToFormat(ext) != constants.PDF {
		e.logger.Error("unsupported document extension", "extension", ext)
		return Result{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	e.logger.Debug("starting text extraction", "path", path, "method", e.cfg.Method)

	var (
		res Result
		err error
	)
	switch e.cfg.Method {
	case MethodNative:
		res, err = e.extractNative(path)
	case MethodPdftotext:
		res, err = e.extractPdftotext(ctx, path)
	default:
		res, err = e.extractAuto(ctx, path)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}

	e.logger.Info("reading PDF file", "path", path, "pages", len(res.Pages), "lines", res.LineCount(), "method", res.Method)
	return res, nil
}

func (e *Extractor) extractAuto(ctx context.Context, path string) (Result, error) {
	res, nativeErr := e.extractNative(path)
	if nativeErr == nil && res.LineCount() > 0 {
		return res, nil
	}

	warn := "native text layer is empty"
	if nativeErr != nil {
		warn = fmt.Sprintf("native text layer failed: %v", nativeErr)
	}
	e.logger.Warn("falling back to pdftotext", "path", path, "reason", warn)

	fallback, err := e.extractPdftotext(ctx, path)
	if err != nil {
		if nativeErr != nil {
			return fallback, fmt.Errorf("native: %v; pdftotext: %w", nativeErr, err)
		}
		return fallback, err
	}
	fallback.Warnings = append([]string{warn}, fallback.Warnings...)
	return fallback, nil
}
