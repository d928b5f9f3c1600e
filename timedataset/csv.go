package timedataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

var ErrMissingColumn = errors.New("column not found in csv header")

// CSVOptions describes which columns of a csv hold the time and value fields
type CSVOptions struct {
	TimeColumn  string
	ValueColumn string
	TimeLayout  string
}

// NewDefaultCSVOptions uses the ds/y column naming of the bundled datasets
func NewDefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		TimeColumn:  "ds",
		ValueColumn: "y",
		TimeLayout:  time.DateOnly,
	}
}

// LoadCSVFile opens the file at path and loads it with LoadCSV
func LoadCSVFile(path string, opt *CSVOptions) (*TimeDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open dataset %s, %w", path, err)
	}
	defer f.Close()

	return LoadCSV(f, opt)
}

// LoadCSV reads a header prefixed csv into a TimeDataset. Rows must already be ordered by time.
func LoadCSV(r io.Reader, opt *CSVOptions) (*TimeDataset, error) {
	if opt == nil {
		opt = NewDefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv header, %w", err)
	}

	timeIdx, valueIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case opt.TimeColumn:
			timeIdx = i
		case opt.ValueColumn:
			valueIdx = i
		}
	}
	if timeIdx < 0 {
		return nil, fmt.Errorf("%s, %w", opt.TimeColumn, ErrMissingColumn)
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("%s, %w", opt.ValueColumn, ErrMissingColumn)
	}

	var t []time.Time
	var y []float64
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read csv row %d, %w", row, err)
		}

		ts, err := time.Parse(opt.TimeLayout, strings.TrimSpace(record[timeIdx]))
		if err != nil {
			return nil, fmt.Errorf("unable to parse time at row %d, %w", row, err)
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(record[valueIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse value at row %d, %w", row, err)
		}
		t = append(t, ts)
		y = append(y, val)
	}

	return NewUnivariateDataset(t, y)
}
