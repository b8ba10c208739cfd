// Package fetch downloads the daily incident report to local disk.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/joseph-ayodele/incidents-tracker/constants"
	"github.com/joseph-ayodele/incidents-tracker/internal/common"
)

type Config struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	Backoff      time.Duration
	DownloadPath string
}

// Document describes a report written to disk.
type Document struct {
	URL       string
	Path      string
	Size      int64
	SHA256    string
	FetchedAt time.Time
}

type Fetcher struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewFetcher(cfg Config, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = constants.DefaultUserAgent
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = constants.DefaultDownloadPath
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Fetch downloads url into the configured download path, replacing any
// previous report there. Transport errors, 5xx and 429 responses are retried.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Document, error) {
	f.logger.Info("fetching incidents", "url", url)

	var body []byte
	attempt := 0
	b := retry.WithMaxRetries(uint64(f.cfg.MaxRetries), retry.NewExponential(f.cfg.Backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		data, err := f.get(ctx, url)
		var se *statusError
		switch {
		case err == nil:
			body = data
			return nil
		case errors.As(err, &se) && !se.retryable():
			return err
		case ctx.Err() != nil:
			return err
		}
		f.logger.Warn("fetch attempt failed", "url", url, "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		f.logger.Error("failed to fetch incidents", "url", url, "attempts", attempt, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", common.ErrFetch, url, err)
	}

	doc, err := f.write(url, body)
	if err != nil {
		f.logger.Error("failed to save report", "path", f.cfg.DownloadPath, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrFetch, err)
	}
	f.logger.Info("saved report", "path", doc.Path, "size", doc.Size, "sha256", doc.SHA256)
	return doc, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &statusError{code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

func (f *Fetcher) write(url string, body []byte) (*Document, error) {
	path := f.cfg.DownloadPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return nil, err
	}
	sum := sha256.Sum256(body)
	return &Document{
		URL:       url,
		Path:      path,
		Size:      int64(len(body)),
		SHA256:    hex.EncodeToString(sum[:]),
		FetchedAt: time.Now().UTC(),
	}, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

func (e *statusError) retryable() bool {
	return e.code >= 500 || e.code == http.StatusTooManyRequests
}
