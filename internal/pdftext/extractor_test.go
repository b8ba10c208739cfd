package pdftext

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	out   string
	err   error
	calls [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	if s.err != nil {
		return nil, []byte("boom"), s.err
	}
	return []byte(s.out), nil, nil
}

func newTestExtractor(cfg Config, r Runner, native func(string, int) ([]PageText, error)) *Extractor {
	e := NewExtractor(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.runner = r
	e.readNative = native
	return e
}

const popplerOutput = "NORMAN POLICE DEPARTMENT\r\n" +
	"Daily Incident Summary (Public)\n" +
	"8/1/2024 0:04 2024-00055419 1345 W LINDSEY ST Traffic Stop OK0140200  \n" +
	"\f" +
	"8/1/2024 0:10 2024-00055420 2000 ANNE ST Burglary OK0140200\n" +
	"\f"

func TestExtractor_Pdftotext(t *testing.T) {
	r := &stubRunner{out: popplerOutput}
	e := newTestExtractor(Config{Method: MethodPdftotext, MaxPages: 5}, r, nil)

	res, err := e.Extract(t.Context(), "/tmp/report.PDF")
	require.NoError(t, err)

	assert.Equal(t, "pdftotext", res.Method)
	require.Len(t, res.Pages, 2)
	assert.Equal(t, PageText{Number: 1, Lines: []string{
		"NORMAN POLICE DEPARTMENT",
		"Daily Incident Summary (Public)",
		"8/1/2024 0:04 2024-00055419 1345 W LINDSEY ST Traffic Stop OK0140200",
	}}, res.Pages[0])
	assert.Equal(t, []string{"8/1/2024 0:10 2024-00055420 2000 ANNE ST Burglary OK0140200"}, res.Pages[1].Lines)

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{"pdftotext", "-raw", "-enc", "UTF-8", "-eol", "unix", "-l", "5", "/tmp/report.PDF", "-"}, r.calls[0])
}

func TestExtractor_PdftotextFailure(t *testing.T) {
	r := &stubRunner{err: errors.New("exit status 1")}
	e := newTestExtractor(Config{Method: MethodPdftotext, Layout: true}, r, nil)

	res, err := e.Extract(t.Context(), "report.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext")
	assert.Equal(t, []string{"boom"}, res.Warnings)
	assert.Equal(t, "-layout", r.calls[0][1])
}

func TestExtractor_RejectsNonPDF(t *testing.T) {
	e := newTestExtractor(Config{}, &stubRunner{}, nil)
	_, err := e.Extract(t.Context(), "report.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported extension")
}

func TestExtractor_AutoPrefersNative(t *testing.T) {
	r := &stubRunner{out: popplerOutput}
	native := func(string, int) ([]PageText, error) {
		return []PageText{{Number: 1, Lines: []string{"8/1/2024 0:10 2024-00055420 2000 ANNE ST Burglary OK0140200"}}}, nil
	}
	e := newTestExtractor(Config{}, r, native)

	res, err := e.Extract(t.Context(), "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf-native", res.Method)
	assert.Empty(t, r.calls, "pdftotext is not needed")
}

func TestExtractor_AutoFallsBack(t *testing.T) {
	t.Run("empty text layer", func(t *testing.T) {
		r := &stubRunner{out: popplerOutput}
		native := func(string, int) ([]PageText, error) {
			return []PageText{{Number: 1}}, nil
		}
		e := newTestExtractor(Config{}, r, native)

		res, err := e.Extract(t.Context(), "report.pdf")
		require.NoError(t, err)
		assert.Equal(t, "pdftotext", res.Method)
		assert.Equal(t, []string{"native text layer is empty"}, res.Warnings)
		assert.Equal(t, 4, res.LineCount())
	})

	t.Run("both backends fail", func(t *testing.T) {
		r := &stubRunner{err: errors.New("not installed")}
		native := func(string, int) ([]PageText, error) {
			return nil, errors.New("malformed xref")
		}
		e := newTestExtractor(Config{}, r, native)

		_, err := e.Extract(t.Context(), "report.pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed xref")
		assert.Contains(t, err.Error(), "not installed")
	})
}

func TestSplitPages(t *testing.T) {
	assert.Equal(t, []PageText{{Number: 1}}, splitPages(""))

	pages := splitPages("a\n\fb\n\n\fc")
	require.Len(t, pages, 3)
	assert.Equal(t, []string{"a"}, pages[0].Lines)
	assert.Equal(t, []string{"b", ""}, pages[1].Lines, "blank lines inside a page are kept for the noise filter")
	assert.Equal(t, []string{"c"}, pages[2].Lines)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "a  b\nc\nd", Normalize("a  b \r\nc\t\rd"))
	assert.Equal(t, "123 MAIN ST", Normalize("123 MAIN ST"))
}

func TestRowText(t *testing.T) {
	runs := pdf.TextHorizontal{
		{S: "8/1/2024", X: 10, W: 40, FontSize: 10},
		{S: "0:04", X: 53, W: 20, FontSize: 10},
		{S: "2024-", X: 80, W: 25, FontSize: 10},
		{S: "00055419", X: 105, W: 40, FontSize: 10},
		{S: " OK0140200", X: 150, W: 50, FontSize: 10},
	}
	assert.Equal(t, "8/1/2024 0:04 2024-00055419 OK0140200", rowText(runs))
}
