package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/joseph-ayodele/incidents-tracker/internal/common"
	"github.com/joseph-ayodele/incidents-tracker/internal/export"
	"github.com/joseph-ayodele/incidents-tracker/internal/extract"
	"github.com/joseph-ayodele/incidents-tracker/internal/fetch"
	"github.com/joseph-ayodele/incidents-tracker/internal/logging"
	"github.com/joseph-ayodele/incidents-tracker/internal/parser"
	"github.com/joseph-ayodele/incidents-tracker/internal/pdftext"
	"github.com/joseph-ayodele/incidents-tracker/internal/pipeline"
	repo "github.com/joseph-ayodele/incidents-tracker/internal/repository"
)

type outputs struct {
	dump bool
	xlsx string
	json string
}

// app holds the process-level collaborators of the CLI.
type app struct {
	stdout io.Writer
	stderr io.Writer
	lines  func(cfg *common.Config, logger *slog.Logger) extract.LineExtractor
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, lines: pdfLines}
	return a.rootCmd()
}

func pdfLines(cfg *common.Config, logger *slog.Logger) extract.LineExtractor {
	return extract.NewPDFAdapter(pdftext.NewExtractor(pdftext.Config{
		Method:    cfg.PDF.Method,
		Pdftotext: cfg.PDF.Pdftotext,
		Layout:    cfg.PDF.Layout,
		MaxPages:  cfg.PDF.MaxPages,
	}, logger), logger)
}

func (a *app) rootCmd() *cobra.Command {
	cfg := common.LoadConfig()
	var out outputs

	cmd := &cobra.Command{
		Use:   "incidents-tracker --incidents <url>",
		Short: "Load a daily incident summary PDF and print incident counts by nature",
		Long: `Downloads the daily incident summary at --incidents, parses each incident
line, stores new incidents by incident number and prints one "nature|count"
line per nature across the whole store.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := a.run(cmd.Context(), cmd.Flags(), cfg, out)
			if err != nil {
				_, _ = fmt.Fprintf(a.stderr, "Error: %v\n", err)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.IncidentsURL, "incidents", cfg.IncidentsURL, "incident summary url")
	f.StringVar(&cfg.Database.Driver, "db-driver", cfg.Database.Driver, "store driver: sqlite or postgres")
	f.StringVar(&cfg.Database.DSN, "db-url", cfg.Database.DSN, "store DSN (sqlite file or postgres url)")
	f.StringVar(&cfg.PDF.Method, "extractor", cfg.PDF.Method, "text extractor: auto, native or pdftotext")
	f.BoolVar(&cfg.PDF.Layout, "pdf-layout", cfg.PDF.Layout, "run pdftotext in -layout mode instead of -raw")
	f.StringSliceVar(&cfg.Parse.NoiseSubstrings, "noise", cfg.Parse.NoiseSubstrings, "substrings marking header lines (comma separated)")
	f.StringVar(&cfg.Fetch.DownloadPath, "download-path", cfg.Fetch.DownloadPath, "where the downloaded report is written")
	f.StringVar(&cfg.Log.File, "log-file", cfg.Log.File, "per-run parse log, truncated on each run")
	f.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "console level: debug, info, warn or error")
	f.BoolVar(&out.dump, "dump", false, "print every stored incident after the summary")
	f.StringVar(&out.xlsx, "xlsx", "", "also write the store to this XLSX workbook")
	f.StringVar(&out.json, "json", "", "also write the store to this JSON file")
	_ = cmd.MarkFlagRequired("incidents")

	return cmd
}

func (a *app) run(ctx context.Context, flags *pflag.FlagSet, cfg *common.Config, out outputs) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := logging.ParseLevel(cfg.Log.Level)
	console := logging.NewConsole(a.stderr, level)

	runID := uuid.NewString()
	ctx = common.WithRunID(ctx, runID)

	runLog, err := logging.OpenRunLog(cfg.Log.File, logging.RunLogLevel(level))
	if err != nil {
		console.Error("failed to open run log", "path", cfg.Log.File, "error", err)
		return err
	}
	defer func() {
		if cerr := runLog.Close(); cerr != nil {
			console.Error("failed to close run log", "error", cerr)
		}
	}()
	logger := runLog.With("run_id", runID)
	flags.Visit(func(f *pflag.Flag) {
		logger.Debug("flag set", "name", f.Name, "value", f.Value.String())
	})

	db, err := repo.Open(ctx, repo.Config{
		Driver:           cfg.Database.Driver,
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repo.HealthCheck(ctx, db, cfg.Database.DialTimeout, logger); err != nil {
		return err
	}

	incidents := repo.NewIncidentRepository(db.Driver, logger)
	fetcher := fetch.NewFetcher(fetch.Config{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.Fetch.Timeout,
		MaxRetries:   cfg.Fetch.MaxRetries,
		Backoff:      cfg.Fetch.Backoff,
		DownloadPath: cfg.Fetch.DownloadPath,
	}, logger)
	lines := a.lines(cfg, logger)
	records := parser.NewParser(
		parser.WithLogger(logger),
		parser.WithNoiseSubstrings(cfg.Parse.NoiseSubstrings...),
	)

	p := pipeline.NewProcessor(logger, fetcher, lines, records, incidents)
	res, err := p.Run(ctx, cfg.IncidentsURL)
	if err != nil {
		return err
	}
	console.Info("run complete",
		"run_id", runID,
		"parsed", len(res.Incidents),
		"inserted", res.Insert.Inserted,
		"ignored", res.Insert.Ignored,
		"log", runLog.Path(),
	)

	if err := export.WriteNatureSummary(a.stdout, res.Counts); err != nil {
		return err
	}
	return writeOutputs(ctx, out, incidents, a.stdout, logger)
}

func writeOutputs(ctx context.Context, out outputs, incidents repo.IncidentRepository, stdout io.Writer, logger *slog.Logger) error {
	if out.dump {
		all, err := incidents.ListIncidents(ctx)
		if err != nil {
			return err
		}
		if err := export.WriteIncidents(stdout, all); err != nil {
			return err
		}
	}
	if out.xlsx == "" && out.json == "" {
		return nil
	}

	svc, err := export.NewService(incidents, logger)
	if err != nil {
		return err
	}
	if out.xlsx != "" {
		if err := writeFile(out.xlsx, func(w io.Writer) error { return svc.WriteXLSX(ctx, w) }); err != nil {
			return fmt.Errorf("xlsx export: %w", err)
		}
	}
	if out.json != "" {
		if err := writeFile(out.json, func(w io.Writer) error { return svc.WriteJSON(ctx, w) }); err != nil {
			return fmt.Errorf("json export: %w", err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
