package anomaly

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	TimeColumn  = "Time"
	ValueColumn = "Value"
)

// DataFormatError reports an uploaded csv that cannot be labeled. Missing lists absent required columns,
// otherwise Row is the 1-based line of the offending record.
type DataFormatError struct {
	Missing []string
	Row     int
	Err     error
}

func (e *DataFormatError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf(
			"csv must contain %q and %q columns, missing %s",
			TimeColumn, ValueColumn, strings.Join(e.Missing, ", "),
		)
	}
	return fmt.Sprintf("invalid csv at row %d, %v", e.Row, e.Err)
}

func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// ReadCSV parses a header prefixed csv holding Time and Value columns. Other columns are ignored.
func ReadCSV(r io.Reader) ([]Point, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DataFormatError{Missing: []string{TimeColumn, ValueColumn}}
	}
	if err != nil {
		return nil, &DataFormatError{Row: 1, Err: err}
	}

	timeIdx, valueIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) {
		case TimeColumn:
			timeIdx = i
		case ValueColumn:
			valueIdx = i
		}
	}
	var missing []string
	if timeIdx < 0 {
		missing = append(missing, TimeColumn)
	}
	if valueIdx < 0 {
		missing = append(missing, ValueColumn)
	}
	if len(missing) > 0 {
		return nil, &DataFormatError{Missing: missing}
	}

	var points []Point
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DataFormatError{Row: row, Err: err}
		}
		if timeIdx >= len(record) || valueIdx >= len(record) {
			return nil, &DataFormatError{Row: row, Err: fmt.Errorf("record has %d fields", len(record))}
		}

		val, err := strconv.ParseFloat(strings.TrimSpace(record[valueIdx]), 64)
		if err != nil {
			return nil, &DataFormatError{Row: row, Err: err}
		}
		points = append(points, Point{
			Time:  strings.TrimSpace(record[timeIdx]),
			Value: val,
		})
	}
	return points, nil
}

// ReadCSVFile opens the file at path and parses it with ReadCSV
func ReadCSVFile(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s, %w", path, err)
	}
	defer f.Close()

	return ReadCSV(f)
}
