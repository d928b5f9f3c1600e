// Package plot builds Apache Echarts charts for historical series, forecasts and labeled anomalies and
// renders them as self contained html pages.
package plot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var (
	ErrSeriesLenMismatch = errors.New("series has a different length than time")
	ErrNoCharts          = errors.New("no charts to render")
)

// DateLayout formats the category axis
const DateLayout = time.DateOnly

func axis(t []time.Time) []string {
	labels := make([]string, len(t))
	for i, ts := range t {
		labels[i] = ts.Format(DateLayout)
	}
	return labels
}

// lineData converts values to echarts points. NaN values become gaps.
func lineData(y []float64) []opts.LineData {
	data := make([]opts.LineData, len(y))
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		data[i] = opts.LineData{Value: v}
	}
	return data
}

func newLine(title string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithTooltipOpts(
			opts.Tooltip{
				Show:    opts.Bool(true),
				Trigger: "axis",
			},
		),
		charts.WithLegendOpts(
			opts.Legend{
				Show: opts.Bool(true),
				Top:  "bottom",
			},
		),
		charts.WithDataZoomOpts(
			opts.DataZoom{
				Type: "slider",
			},
		),
	)
	return line
}

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The input
// y is a slice of series that must have the same length as the input time slice.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) (*charts.Line, error) {
	if len(seriesName) != len(y) {
		return nil, fmt.Errorf("%d names for %d series, %w", len(seriesName), len(y), ErrSeriesLenMismatch)
	}
	for i := range y {
		if len(y[i]) != len(t) {
			return nil, fmt.Errorf(
				"series %s has length %d, but time has length %d, %w",
				seriesName[i], len(y[i]), len(t), ErrSeriesLenMismatch,
			)
		}
	}

	line := newLine(title)
	line.SetXAxis(axis(t))
	for i, name := range seriesName {
		line.AddSeries(name, lineData(y[i]))
	}
	return line, nil
}

// LineForecast plots the history followed by the forecast. The lower and upper bounds are drawn dashed
// when present.
func LineForecast(
	title string,
	t []time.Time, actual []float64,
	ft []time.Time, forecast, lower, upper []float64,
) (*charts.Line, error) {
	if len(t) != len(actual) {
		return nil, fmt.Errorf("actual has length %d, %w", len(actual), ErrSeriesLenMismatch)
	}
	if len(ft) != len(forecast) {
		return nil, fmt.Errorf("forecast has length %d, %w", len(forecast), ErrSeriesLenMismatch)
	}
	hasBounds := len(lower) > 0 || len(upper) > 0
	if hasBounds && (len(lower) != len(ft) || len(upper) != len(ft)) {
		return nil, fmt.Errorf("bounds have lengths %d and %d, %w", len(lower), len(upper), ErrSeriesLenMismatch)
	}

	n := len(t) + len(ft)
	allT := make([]time.Time, 0, n)
	allT = append(allT, t...)
	allT = append(allT, ft...)

	pad := func(head, tail []float64) []float64 {
		res := make([]float64, 0, n)
		res = append(res, head...)
		for len(res) < len(t) {
			res = append(res, math.NaN())
		}
		return append(res, tail...)
	}
	nanTail := make([]float64, len(ft))
	for i := range nanTail {
		nanTail[i] = math.NaN()
	}

	line := newLine(title)
	line.SetXAxis(axis(allT)).
		AddSeries("Actual", lineData(pad(actual, nanTail))).
		AddSeries("Forecast", lineData(pad(nil, forecast)))
	if hasBounds {
		dashed := charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"})
		line.AddSeries("Lower", lineData(pad(nil, lower)), dashed).
			AddSeries("Upper", lineData(pad(nil, upper)), dashed)
	}
	return line, nil
}

// LineAnomalies plots the series with the flagged points overlaid as red markers. The x labels are
// used as is since uploaded series may index points by any value.
func LineAnomalies(title string, x []string, y []float64, anomalous []bool) (*charts.Line, error) {
	if len(x) != len(y) || len(x) != len(anomalous) {
		return nil, fmt.Errorf(
			"labels %d, values %d, flags %d, %w",
			len(x), len(y), len(anomalous), ErrSeriesLenMismatch,
		)
	}

	line := newLine(title)
	line.SetXAxis(x).AddSeries("Value", lineData(y))

	markers := make([]opts.ScatterData, len(y))
	for i, flagged := range anomalous {
		if !flagged {
			continue
		}
		markers[i] = opts.ScatterData{Value: y[i], SymbolSize: 10}
	}
	scatter := charts.NewScatter()
	scatter.SetXAxis(x).AddSeries(
		"Anomaly", markers,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "red"}),
	)
	line.Overlap(scatter)
	return line, nil
}

// Render writes every chart to a single html page
func Render(w io.Writer, title string, c ...components.Charter) error {
	if len(c) == 0 {
		return ErrNoCharts
	}
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(c...)
	return page.Render(w)
}

// RenderFile writes the page to the path, replacing any existing file
func RenderFile(path, title string, c ...components.Charter) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create chart file, %w", err)
	}
	if err := Render(file, title, c...); err != nil {
		file.Close()
		return fmt.Errorf("unable to render charts, %w", err)
	}
	return file.Close()
}
