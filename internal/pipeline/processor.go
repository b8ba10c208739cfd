// Package pipeline runs one ingestion: fetch the report, extract its lines,
// parse incidents, store them and read back the per-nature summary.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/incidents-tracker/internal/common"
	"github.com/joseph-ayodele/incidents-tracker/internal/entity"
	"github.com/joseph-ayodele/incidents-tracker/internal/extract"
	"github.com/joseph-ayodele/incidents-tracker/internal/fetch"
	"github.com/joseph-ayodele/incidents-tracker/internal/parser"
	"github.com/joseph-ayodele/incidents-tracker/internal/repository"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Document, error)
}

type RecordParser interface {
	Parse(doc *extract.Document) ([]entity.Incident, parser.Stats, error)
}

// Result is what one run produced.
type Result struct {
	RunID     string
	Source    *fetch.Document // nil when a local file was processed
	Document  *extract.Document
	Stats     parser.Stats
	Insert    repository.InsertResult
	Counts    []entity.NatureCount
	Incidents []entity.Incident
	Elapsed   time.Duration
}

// Processor coordinates fetch, line extraction, parsing and storage.
type Processor struct {
	Logger  *slog.Logger
	Fetch   Fetcher
	Extract extract.LineExtractor
	Parse   RecordParser
	Repo    repository.IncidentRepository
}

func NewProcessor(logger *slog.Logger, f Fetcher, e extract.LineExtractor, p RecordParser, repo repository.IncidentRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Fetch: f, Extract: e, Parse: p, Repo: repo}
}

// Run downloads the report at url and processes it. The summary in the
// result covers the whole store, not just this report.
func (p *Processor) Run(ctx context.Context, url string) (*Result, error) {
	ctx = ensureRunID(ctx)
	runID := common.RunIDFromContext(ctx)

	src, err := p.Fetch.Fetch(ctx, url)
	if err != nil {
		p.Logger.Error("processor.fetch.failed", "run_id", runID, "url", url, "err", err)
		return nil, err
	}
	p.Logger.Info("processor.fetch.ok", "run_id", runID, "path", src.Path, "size", src.Size, "sha256", src.SHA256)

	res, err := p.ProcessFile(ctx, src.Path)
	if err != nil {
		return nil, err
	}
	res.Source = src
	return res, nil
}

// ProcessFile runs every stage after the download against a local PDF.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	ctx = ensureRunID(ctx)
	res := &Result{RunID: common.RunIDFromContext(ctx)}

	if err := p.Repo.EnsureSchema(ctx); err != nil {
		p.Logger.Error("processor.schema.failed", "run_id", res.RunID, "err", err)
		return nil, err
	}

	doc, err := p.Extract.Extract(ctx, path)
	if err != nil {
		p.Logger.Error("processor.extract.failed", "run_id", res.RunID, "path", path, "err", err)
		return nil, err
	}
	if doc == nil {
		p.Logger.Error("processor.extract.failed", "run_id", res.RunID, "path", path, "err", parser.ErrNilDocument)
		return nil, fmt.Errorf("extract %s: %w", path, parser.ErrNilDocument)
	}
	res.Document = doc
	p.Logger.Info("processor.extract.ok",
		"run_id", res.RunID,
		"method", doc.Method,
		"pages", len(doc.Pages),
		"lines", doc.LineCount(),
	)

	incidents, stats, err := p.Parse.Parse(doc)
	if err != nil {
		p.Logger.Error("processor.parse.failed", "run_id", res.RunID, "err", err)
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	res.Incidents, res.Stats = incidents, stats

	ins, err := p.Repo.InsertIncidents(ctx, incidents)
	if err != nil {
		p.Logger.Error("processor.store.failed", "run_id", res.RunID, "err", err)
		return nil, err
	}
	res.Insert = ins

	counts, err := p.Repo.NatureCounts(ctx)
	if err != nil {
		p.Logger.Error("processor.summary.failed", "run_id", res.RunID, "err", err)
		return nil, err
	}
	res.Counts = counts
	res.Elapsed = time.Since(start)

	p.Logger.Info("processor.ok",
		"run_id", res.RunID,
		"parsed", len(incidents),
		"inserted", ins.Inserted,
		"ignored", ins.Ignored,
		"natures", len(counts),
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)
	return res, nil
}

func ensureRunID(ctx context.Context) context.Context {
	if common.RunIDFromContext(ctx) != "" {
		return ctx
	}
	return common.WithRunID(ctx, uuid.NewString())
}
