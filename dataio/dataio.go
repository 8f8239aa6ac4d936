package dataio

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/WellcomeIdeathon2023/The-York-Vectors/logging"
	"github.com/WellcomeIdeathon2023/The-York-Vectors/timeseries"
)

// ErrBadRecord is returned for a CSV record that cannot be parsed as a
// (time, value) pair
var ErrBadRecord = errors.New("dataio: malformed record")

// LoadSeriesCSV reads a two-column time,value CSV file into a TimeSeries.
// A non-numeric first row is treated as a header and skipped.
func LoadSeriesCSV(path string) (*timeseries.TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataio: open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataio: read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrBadRecord, path)
	}

	start := 0
	if _, err := strconv.ParseFloat(records[0][0], 64); err != nil {
		start = 1 // header row
	}

	times := make([]float64, 0, len(records)-start)
	values := make([]float64, 0, len(records)-start)
	for i, record := range records[start:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d time %q", ErrBadRecord, path, i+start+1, record[0])
		}
		v, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d value %q", ErrBadRecord, path, i+start+1, record[1])
		}
		times = append(times, t)
		values = append(values, v)
	}

	ts, err := timeseries.New(times, values)
	if err != nil {
		return nil, fmt.Errorf("dataio: %s: %w", path, err)
	}

	logging.Debug("loaded series", logging.Fields{"path": path, "samples": ts.Len()})
	return ts, nil
}

// SaveSeriesCSV writes a TimeSeries as a two-column time,value CSV file with
// a header row
func SaveSeriesCSV(ts *timeseries.TimeSeries, path string) error {
	if ts == nil || ts.Len() == 0 {
		return fmt.Errorf("%w: nil or empty series", ErrBadRecord)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataio: create %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"time", "value"}); err != nil {
		return fmt.Errorf("dataio: write %s: %w", path, err)
	}
	for i := 0; i < ts.Len(); i++ {
		t, v := ts.At(i)
		record := []string{
			strconv.FormatFloat(t, 'g', -1, 64),
			strconv.FormatFloat(v, 'g', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("dataio: write %s: %w", path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("dataio: flush %s: %w", path, err)
	}

	logging.Debug("saved series", logging.Fields{"path": path, "samples": ts.Len()})
	return nil
}

// WriteReportJSON writes any JSON-taggable report structure to path with
// indentation for human reading
func WriteReportJSON(path string, report any) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("dataio: marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("dataio: write %s: %w", path, err)
	}

	logging.Debug("wrote report", logging.Fields{"path": path, "bytes": len(data)})
	return nil
}
