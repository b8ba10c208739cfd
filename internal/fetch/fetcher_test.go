package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/incidents-tracker/internal/common"
)

func newTestFetcher(t *testing.T, retries int) *Fetcher {
	t.Helper()
	return NewFetcher(Config{
		Timeout:      5 * time.Second,
		MaxRetries:   retries,
		Backoff:      time.Millisecond,
		DownloadPath: filepath.Join(t.TempDir(), "tmp", "incident_report.pdf"),
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetcher_Fetch(t *testing.T) {
	payload := []byte("%PDF-1.4 fake report")
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := newTestFetcher(t, 0)
	doc, err := f.Fetch(t.Context(), srv.URL+"/report.pdf")
	require.NoError(t, err)

	assert.Equal(t, "Mozilla/5.0", gotUA)
	assert.Equal(t, int64(len(payload)), doc.Size)
	sum := sha256.Sum256(payload)
	assert.Equal(t, hex.EncodeToString(sum[:]), doc.SHA256)

	onDisk, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, onDisk)
}

func TestFetcher_OverwritesPreviousReport(t *testing.T) {
	body := "first"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	f := newTestFetcher(t, 0)
	_, err := f.Fetch(t.Context(), srv.URL)
	require.NoError(t, err)

	body = "second"
	doc, err := f.Fetch(t.Context(), srv.URL)
	require.NoError(t, err)

	onDisk, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(onDisk))
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	doc, err := newTestFetcher(t, 3).Fetch(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int64(2), doc.Size)
}

func TestFetcher_GivesUp(t *testing.T) {
	t.Run("client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := newTestFetcher(t, 3).Fetch(t.Context(), srv.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrFetch)
		assert.Contains(t, err.Error(), "404")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("retries are bounded", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newTestFetcher(t, 2).Fetch(t.Context(), srv.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrFetch)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := newTestFetcher(t, 0).Fetch(t.Context(), "http://127.0.0.1:0/report.pdf")
		assert.ErrorIs(t, err, common.ErrFetch)
	})
}
