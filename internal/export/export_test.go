package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/incidents-tracker/internal/entity"
	"github.com/joseph-ayodele/incidents-tracker/internal/repository"
)

type fakeRepo struct {
	repository.IncidentRepository
	incidents []entity.Incident
	counts    []entity.NatureCount
	err       error
}

func (f *fakeRepo) ListIncidents(context.Context) ([]entity.Incident, error) {
	return f.incidents, f.err
}

func (f *fakeRepo) NatureCounts(context.Context) ([]entity.NatureCount, error) {
	return f.counts, f.err
}

var (
	stored = []entity.Incident{
		{Time: "8/1/2024 0:04", Number: "2024-00055419", Location: "1345 W LINDSEY ST Traffic", Nature: "Stop", ORI: "OK0140200"},
		{Time: "8/1/2024 0:10", Number: "2024-00055420", Location: "2000 ANNE ST", Nature: "Burglary", ORI: "OK0140200"},
		{Time: "8/1/2024 0:31", Number: "2024-00055421", Location: "CLOSED", Nature: "", ORI: "EMSSTAT"},
		{Time: "8/1/2024 1:02", Number: "2024-00055422", Location: "101 E MAIN ST", Nature: "Burglary", ORI: "OK0140200"},
	}
	storedCounts = []entity.NatureCount{
		{Nature: "", Count: 1},
		{Nature: "Burglary", Count: 2},
		{Nature: "Stop", Count: 1},
	}
)

func TestWriteNatureSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNatureSummary(&buf, storedCounts))

	g := goldie.New(t)
	g.Assert(t, "nature_summary", buf.Bytes())
}

func TestWriteNatureSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNatureSummary(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestWriteIncidents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIncidents(&buf, stored[:2]))
	assert.Equal(t,
		"8/1/2024 0:04|2024-00055419|1345 W LINDSEY ST Traffic|Stop|OK0140200\n"+
			"8/1/2024 0:10|2024-00055420|2000 ANNE ST|Burglary|OK0140200\n",
		buf.String())

	buf.Reset()
	require.NoError(t, WriteIncidents(&buf, nil))
	assert.Equal(t, "No incidents found in the database.\n", buf.String())
}

func TestService_WriteJSON(t *testing.T) {
	svc, err := NewService(&fakeRepo{incidents: stored}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteJSON(t.Context(), &buf))

	var got []entity.Incident
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, stored, got)
	assert.Contains(t, buf.String(), `"incident_number": "2024-00055419"`)
}

func TestService_WriteJSON_RejectsMalformed(t *testing.T) {
	bad := []entity.Incident{{Time: "yesterday", Number: "2024-1", ORI: "OK01"}}
	svc, err := NewService(&fakeRepo{incidents: bad}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = svc.WriteJSON(t.Context(), &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024-1")
	assert.Empty(t, buf.String())
}

func TestService_WriteXLSX(t *testing.T) {
	svc, err := NewService(&fakeRepo{incidents: stored, counts: storedCounts}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteXLSX(t.Context(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Incidents", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Incidents")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Date / Time", "Incident Number", "Location", "Nature", "Incident ORI"}, rows[0])
	assert.Equal(t, []string{"8/1/2024 0:10", "2024-00055420", "2000 ANNE ST", "Burglary", "OK0140200"}, rows[2])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Nature", "Count"},
		{"", "1"},
		{"Burglary", "2"},
		{"Stop", "1"},
	}, summary)
}

func TestService_RepoError(t *testing.T) {
	boom := errors.New("database is locked")
	svc, err := NewService(&fakeRepo{err: boom}, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.WriteXLSX(t.Context(), &bytes.Buffer{}), boom)
	assert.ErrorIs(t, svc.WriteJSON(t.Context(), &bytes.Buffer{}), boom)
}
