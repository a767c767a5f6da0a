// runmed applies a running median to a column of CSV data.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/chrissnell/runningmedian/pkg/medfilt"
	"gonum.org/v1/gonum/stat"
)

func main() {
	var (
		inputPath  = flag.String("input", "-", "Input CSV file path, or - for stdin")
		outputPath = flag.String("output", "-", "Output CSV file path, or - for stdout")
		column     = flag.Int("column", 0, "Zero-based index of the column to filter")
		window     = flag.Int("window", 5, "Window length in samples")
		tapering   = flag.String("tapering", "symmetric", "Tapering: symmetric, asymmetric, asymmetric_truncated, none, beginning_only")
		nanPolicy  = flag.String("nan", "include", "NaN policy: include or ignore")
		intOutput  = flag.Bool("int", false, "Emit integer output (fails on fractional medians)")
		showStats  = flag.Bool("stats", false, "Print residual statistics to stderr")
	)
	flag.Parse()

	taper, err := medfilt.ParseTapering(*tapering)
	if err != nil {
		fatalf("%v", err)
	}
	policy, err := medfilt.ParseNaNPolicy(*nanPolicy)
	if err != nil {
		fatalf("%v", err)
	}

	input, err := readColumn(*inputPath, *column)
	if err != nil {
		fatalf("Error reading input: %v", err)
	}
	if len(input) == 0 {
		fatalf("Input contains no rows")
	}

	medians, err := medfilt.RunningMedian(input, *window, taper, policy)
	if err != nil {
		fatalf("Error computing running median: %v", err)
	}

	if *showStats {
		printStats(input, medians, *window, taper)
	}

	if err := writeOutput(*outputPath, medians, *intOutput); err != nil {
		fatalf("Error writing output: %v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// readColumn parses one column of a CSV stream into floats. Empty fields and
// unparseable values become NaN so sensor dropouts flow through the filter's
// NaN handling instead of aborting the run.
func readColumn(path string, column int) ([]float64, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var out []float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if column >= len(record) {
			return nil, fmt.Errorf("row %d has only %d columns, need column %d", len(out)+1, len(record), column)
		}
		v, err := strconv.ParseFloat(record[column], 64)
		if err != nil {
			v = math.NaN()
		}
		out = append(out, v)
	}
	return out, nil
}

func writeOutput(path string, medians []float64, intOutput bool) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if intOutput {
		ints, err := medfilt.Convert[int64](medians)
		if err != nil {
			return err
		}
		for _, v := range ints {
			if err := writer.Write([]string{strconv.FormatInt(v, 10)}); err != nil {
				return err
			}
		}
		return nil
	}

	for _, v := range medians {
		if err := writer.Write([]string{strconv.FormatFloat(v, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	return nil
}

// printStats summarizes how much the filter changed the series. Residuals
// are computed where input and output align, which requires an output index
// offset for taperings whose output is not one-to-one with the input.
func printStats(input, medians []float64, window int, taper medfilt.Tapering) {
	n := len(input)
	if len(medians) < 1 {
		return
	}

	var residuals []float64
	for i := 0; i < n && i < len(medians); i++ {
		if math.IsNaN(input[i]) || math.IsNaN(medians[i]) {
			continue
		}
		residuals = append(residuals, input[i]-medians[i])
	}
	if len(residuals) == 0 {
		fmt.Fprintln(os.Stderr, "No aligned non-NaN samples; skipping statistics")
		return
	}

	mean := stat.Mean(residuals, nil)
	stddev := stat.StdDev(residuals, nil)
	sorted := append([]float64(nil), residuals...)
	sort.Float64s(sorted)
	p05 := stat.Quantile(0.05, stat.Empirical, sorted, nil)
	p95 := stat.Quantile(0.95, stat.Empirical, sorted, nil)

	fmt.Fprintf(os.Stderr, "Residual statistics (%d aligned samples, window=%d, tapering=%s):\n",
		len(residuals), window, taper)
	fmt.Fprintf(os.Stderr, "  mean:   %+.4f\n", mean)
	fmt.Fprintf(os.Stderr, "  stddev: %.4f\n", stddev)
	fmt.Fprintf(os.Stderr, "  p05:    %+.4f\n", p05)
	fmt.Fprintf(os.Stderr, "  p95:    %+.4f\n", p95)
}
