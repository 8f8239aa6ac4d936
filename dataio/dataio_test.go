package dataio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WellcomeIdeathon2023/The-York-Vectors/timeseries"
)

// TestSeriesCSV_RoundTrip verifies save then load reproduces the series.
func TestSeriesCSV_RoundTrip(t *testing.T) {
	ts, err := timeseries.New(
		[]float64{0, 0.5, 1.25, 2},
		[]float64{1.5, -2.25, 0, 3.125},
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, SaveSeriesCSV(ts, path))

	loaded, err := LoadSeriesCSV(path)
	require.NoError(t, err)
	assert.Equal(t, ts.Times(), loaded.Times())
	assert.Equal(t, ts.Values(), loaded.Values())
}

// TestLoadSeriesCSV_NoHeader verifies headerless files load too.
func TestLoadSeriesCSV_NoHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.csv")
	require.NoError(t, os.WriteFile(path, []byte("0,1\n1,2\n2,4\n"), 0o644))

	ts, err := LoadSeriesCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, ts.Times())
	assert.Equal(t, []float64{1, 2, 4}, ts.Values())
}

// TestLoadSeriesCSV_Malformed verifies parse failures report ErrBadRecord.
func TestLoadSeriesCSV_Malformed(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "badvalue.csv")
	require.NoError(t, os.WriteFile(path, []byte("time,value\n0,one\n"), 0o644))
	_, err := LoadSeriesCSV(path)
	assert.ErrorIs(t, err, ErrBadRecord)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = LoadSeriesCSV(empty)
	assert.ErrorIs(t, err, ErrBadRecord)

	unordered := filepath.Join(dir, "unordered.csv")
	require.NoError(t, os.WriteFile(unordered, []byte("2,1\n1,2\n"), 0o644))
	_, err = LoadSeriesCSV(unordered)
	assert.ErrorIs(t, err, timeseries.ErrUnorderedTimes)

	_, err = LoadSeriesCSV(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

// TestWriteReportJSON verifies the report is valid indented JSON.
func TestWriteReportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := map[string]any{"distance": 0.125, "pattern": "symmetric"}
	require.NoError(t, WriteReportJSON(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0.125, decoded["distance"])
	assert.Equal(t, "symmetric", decoded["pattern"])
}
