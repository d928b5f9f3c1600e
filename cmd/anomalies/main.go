// anomalies labels outliers in a series with an isolation forest, renders an echarts report and
// prints the labeled points
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/aouyang1/go-autoforecast/anomaly"
	"github.com/aouyang1/go-autoforecast/plot"

	"github.com/goccy/go-json"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

const (
	formatTable = "table"
	formatJSON  = "json"

	syntheticPoints = 500
)

var errInvalidFormat = errors.New("format must be table or json")

type flags struct {
	input         string
	contamination float64
	seed          uint64
	anomaliesOnly bool
	out           string
	format        string
	cpuprofile    string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "anomalies",
		Short: "Label anomalies in a time series with an isolation forest",
		Long: "Label anomalies in a csv with Time and Value columns, or in a synthetic sine series when no " +
			"input is given. Writes an html chart with the anomalies marked and prints the labeled points.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.cpuprofile != "" {
				defer profile.Start(profile.CPUProfile, profile.ProfilePath(f.cpuprofile), profile.NoShutdownHook, profile.Quiet).Stop()
			}
			err := run(f, stdout)
			var dferr *anomaly.DataFormatError
			if errors.As(err, &dferr) {
				fmt.Fprintf(stderr, "Error: %s\n", dferr.Error())
				return err
			}
			if err != nil {
				fmt.Fprintf(stderr, "anomalies: %v\n", err)
			}
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "", "csv with Time and Value columns, synthetic data when empty")
	fl.Float64VarP(&f.contamination, "contamination", "c", anomaly.DefaultContamination, "expected fraction of anomalies in (0, 0.5]")
	fl.Uint64Var(&f.seed, "seed", anomaly.DefaultSeed, "random seed for the synthetic data and the forest")
	fl.BoolVar(&f.anomaliesOnly, "anomalies-only", false, "only print points labeled as anomalies")
	fl.StringVarP(&f.out, "out", "o", "anomalies.html", "html chart report, skipped when empty")
	fl.StringVarP(&f.format, "format", "f", formatTable, "output format, table or json")
	fl.StringVar(&f.cpuprofile, "cpuprofile", "", "directory to write a cpu profile to")
	return cmd
}

func loadPoints(f *flags) ([]anomaly.Point, string, error) {
	if f.input == "" {
		return anomaly.Synthetic(syntheticPoints, f.seed), "Synthetic Data", nil
	}
	points, err := anomaly.ReadCSVFile(f.input)
	if err != nil {
		return nil, "", err
	}
	return points, f.input, nil
}

func run(f *flags, w io.Writer) error {
	if f.format != formatTable && f.format != formatJSON {
		return fmt.Errorf("got %q, %w", f.format, errInvalidFormat)
	}

	points, title, err := loadPoints(f)
	if err != nil {
		return err
	}

	opt := anomaly.NewDefaultOptions()
	opt.Contamination = f.contamination
	opt.Seed = f.seed
	labeled, err := anomaly.Label(points, opt)
	if err != nil {
		return err
	}

	if f.out != "" {
		if err := report(f.out, title, labeled); err != nil {
			return err
		}
	}

	rows := labeled
	if f.anomaliesOnly {
		rows = anomaly.Anomalies(labeled)
	}
	if f.format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	return writeTable(w, rows, anomaly.Count(labeled), len(labeled))
}

func report(path, title string, labeled []anomaly.LabeledPoint) error {
	x := make([]string, len(labeled))
	y := make([]float64, len(labeled))
	flagged := make([]bool, len(labeled))
	for i, p := range labeled {
		x[i] = p.Time
		y[i] = p.Value
		flagged[i] = p.IsAnomaly
	}
	line, err := plot.LineAnomalies(title, x, y, flagged)
	if err != nil {
		return err
	}
	return plot.RenderFile(path, "Anomaly Detection", line)
}

func writeTable(w io.Writer, rows []anomaly.LabeledPoint, flagged, total int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Time\tValue\tScore\tAnomaly")
	for _, p := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%t\n",
			p.Time, strconv.FormatFloat(p.Value, 'f', -1, 64), p.Score, p.IsAnomaly,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d points labeled as anomalies\n", flagged, total)
	return err
}
