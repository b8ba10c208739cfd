package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/incidents-tracker/internal/entity"
	"github.com/joseph-ayodele/incidents-tracker/internal/repository"
)

const (
	incidentsSheet = "Incidents"
	summarySheet   = "Summary"
)

// Service writes the stored incidents in file formats meant for people.
type Service struct {
	repo   repository.IncidentRepository
	schema *jsonschema.Schema
	logger *slog.Logger
}

func NewService(repo repository.IncidentRepository, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b, err := json.Marshal(IncidentJSONSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("incident.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("incident.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Service{repo: repo, schema: schema, logger: logger}, nil
}

// WriteJSON writes every stored incident as a JSON array. Each record is
// checked against IncidentJSONSchema first.
func (s *Service) WriteJSON(ctx context.Context, w io.Writer) error {
	incidents, err := s.repo.ListIncidents(ctx)
	if err != nil {
		return fmt.Errorf("query incidents: %w", err)
	}

	for _, inc := range incidents {
		if err := s.validate(inc); err != nil {
			s.logger.Error("incident failed schema validation", "incident_number", inc.Number, "error", err)
			return fmt.Errorf("incident %s: %w", inc.Number, err)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(incidents); err != nil {
		return fmt.Errorf("json write: %w", err)
	}
	s.logger.Info("export.json.ok", "rows", len(incidents))
	return nil
}

func (s *Service) validate(inc entity.Incident) error {
	b, err := json.Marshal(inc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return s.schema.Validate(v)
}

// WriteXLSX writes a workbook with an Incidents sheet holding every stored
// row and a Summary sheet holding the per-nature counts.
func (s *Service) WriteXLSX(ctx context.Context, w io.Writer) error {
	start := time.Now()

	incidents, err := s.repo.ListIncidents(ctx)
	if err != nil {
		return fmt.Errorf("query incidents: %w", err)
	}
	counts, err := s.repo.NatureCounts(ctx)
	if err != nil {
		return fmt.Errorf("query nature counts: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", incidentsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	writeRow(f, incidentsSheet, 1, "Date / Time", "Incident Number", "Location", "Nature", "Incident ORI")
	for i, inc := range incidents {
		writeRow(f, incidentsSheet, i+2, inc.Time, inc.Number, inc.Location, inc.Nature, inc.ORI)
	}

	writeRow(f, summarySheet, 1, "Nature", "Count")
	for i, c := range counts {
		writeRow(f, summarySheet, i+2, c.Nature, c.Count)
	}

	_ = f.SetColWidth(incidentsSheet, "A", "A", 16) // time
	_ = f.SetColWidth(incidentsSheet, "B", "B", 16) // number
	_ = f.SetColWidth(incidentsSheet, "C", "C", 40) // location
	_ = f.SetColWidth(incidentsSheet, "D", "D", 28) // nature
	_ = f.SetColWidth(incidentsSheet, "E", "E", 12) // ori
	_ = f.SetColWidth(summarySheet, "A", "A", 40)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(incidents),
		"natures", len(counts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}
