// Package datasets bundles the static series served by the forecast service
package datasets

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/aouyang1/go-autoforecast/timedataset"
)

//go:embed airpassengers.csv
var airPassengersCSV []byte

// AirPassengers returns the monthly totals of international airline passengers from 1949-01 through
// 1960-12 (Box & Jenkins series G). Each call returns a fresh dataset.
func AirPassengers() (*timedataset.TimeDataset, error) {
	td, err := timedataset.LoadCSV(bytes.NewReader(airPassengersCSV), nil)
	if err != nil {
		return nil, fmt.Errorf("unable to load embedded air passengers dataset, %w", err)
	}
	return td, nil
}

// Load returns the dataset at path, or the embedded AirPassengers dataset when path is empty. The
// loaded series must be evenly spaced at freq.
func Load(path string, freq timedataset.Frequency) (*timedataset.TimeDataset, error) {
	var td *timedataset.TimeDataset
	var err error
	if path == "" {
		td, err = AirPassengers()
	} else {
		td, err = timedataset.LoadCSVFile(path, nil)
	}
	if err != nil {
		return nil, err
	}

	if err := td.ValidateFrequency(freq); err != nil {
		return nil, fmt.Errorf("dataset does not match frequency %s, %w", freq, err)
	}
	return td, nil
}
