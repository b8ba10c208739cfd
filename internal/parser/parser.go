// Package parser turns extracted report lines into incident records.
//
// Each line passes through three stages: the noise filter, the line grammar
// and the location/nature splitter. A line yields at most one record and
// dropped lines are written to the run logger with the reason they were
// dropped.
package parser

import (
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/incidents-tracker/constants"
	"github.com/joseph-ayodele/incidents-tracker/internal/entity"
	"github.com/joseph-ayodele/incidents-tracker/internal/extract"
)

// ErrNilDocument means the line extractor handed over no document at all.
var ErrNilDocument = errors.New("parser: nil document")

// Stats counts the outcome of every line seen during Parse.
type Stats struct {
	Pages         int
	Lines         int
	Extracted     int
	Noise         int
	NonConforming int
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the run-scoped sink for per-line decisions.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithNoiseSubstrings replaces the default header substrings.
func WithNoiseSubstrings(substrings ...string) Option {
	return func(p *Parser) { p.noise = NewNoiseFilter(substrings) }
}

// WithSplitter replaces the LastSpace location/nature heuristic.
func WithSplitter(s Splitter) Option {
	return func(p *Parser) {
		if s != nil {
			p.splitter = s
		}
	}
}

// WithGrammar replaces the default line grammar.
func WithGrammar(g *Grammar) Option {
	return func(p *Parser) {
		if g != nil {
			p.grammar = g
		}
	}
}

// Parser assembles incidents from documents. It holds no per-run state, so
// one instance may parse several documents in turn.
type Parser struct {
	noise    *NoiseFilter
	grammar  *Grammar
	splitter Splitter
	logger   *slog.Logger
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		noise:    NewNoiseFilter(constants.DefaultNoiseSubstrings),
		grammar:  DefaultGrammar(),
		splitter: LastSpace,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseLine decides the fate of a single line. The returned incident is only
// meaningful when the outcome is constants.LineExtracted.
func (p *Parser) ParseLine(line string) (entity.Incident, constants.LineOutcome) {
	if skip, reason := p.noise.Skip(line); skip {
		p.logger.Info("skipped header or junk line", "line", line, "reason", reason)
		return entity.Incident{}, constants.LineNoise
	}

	f, ok := p.grammar.Match(line)
	if !ok {
		p.logger.Info("line didn't match pattern", "line", line)
		return entity.Incident{}, constants.LineNonConforming
	}

	location, nature := p.splitter.Split(f.Middle)
	inc := entity.Incident{
		Time:     f.Time,
		Number:   f.Number,
		Location: location,
		Nature:   nature,
		ORI:      f.ORI,
	}
	p.logger.Info("extracted fields",
		"incident_time", inc.Time,
		"incident_number", inc.Number,
		"location", inc.Location,
		"nature", inc.Nature,
		"incident_ori", inc.ORI,
	)
	return inc, constants.LineExtracted
}

// Parse walks pages in document order and lines in page order. Records come
// back in encounter order; duplicates are kept.
func (p *Parser) Parse(doc *extract.Document) ([]entity.Incident, Stats, error) {
	var stats Stats
	if doc == nil {
		return nil, stats, ErrNilDocument
	}

	p.logger.Info("reading document", "path", doc.Path, "pages", len(doc.Pages), "method", doc.Method)

	incidents := make([]entity.Incident, 0, doc.LineCount())
	for _, page := range doc.Pages {
		stats.Pages++
		for _, line := range page.Lines {
			stats.Lines++
			inc, outcome := p.ParseLine(line)
			switch outcome {
			case constants.LineExtracted:
				stats.Extracted++
				incidents = append(incidents, inc)
			case constants.LineNoise:
				stats.Noise++
			default:
				stats.NonConforming++
			}
		}
	}

	p.logger.Info("extracted incidents",
		"count", len(incidents),
		"lines", stats.Lines,
		"noise", stats.Noise,
		"non_conforming", stats.NonConforming,
	)
	return incidents, stats, nil
}
