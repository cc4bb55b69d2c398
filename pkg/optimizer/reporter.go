package optimizer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Reporter formats and outputs EvalResults.
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a reporter writing to w, defaulting to stdout.
func NewReporter(w io.Writer) *Reporter {
	if w == nil {
		w = os.Stdout
	}
	return &Reporter{writer: w}
}

// PrintSummary prints a human-readable summary of result.
func (r *Reporter) PrintSummary(result *EvalResult) {
	w := r.writer

	fmt.Fprintln(w)
	fmt.Fprintln(w, "+--------------------------------------------------------------+")
	fmt.Fprintln(w, "|              Architecture Optimizer Results                  |")
	fmt.Fprintln(w, "+--------------------------------------------------------------+")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Suite:    %s\n", result.SuiteName)
	fmt.Fprintf(w, "Time:     %s\n", result.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %v\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintln(w)

	passRate := 0.0
	if result.TotalTests > 0 {
		passRate = float64(result.PassedTests) / float64(result.TotalTests) * 100
	}
	fmt.Fprintf(w, "Tests: %d/%d passed (%.1f%%)\n", result.PassedTests, result.TotalTests, passRate)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "+--------------------------------------------------------------+")
	fmt.Fprintln(w, "|                    Score Components                          |")
	fmt.Fprintln(w, "+--------------------------------------------------------------+")
	for _, tr := range result.Results {
		fmt.Fprintf(w, "| %-20s\n", tr.TestCase.Name)
		r.printComponentRow(w, "Conformance", tr.Best.Conformance, tr.TestCase.Thresholds.Conformance)
		r.printComponentRow(w, "Cohesion", tr.Best.Cohesion, tr.TestCase.Thresholds.Cohesion)
		r.printComponentRow(w, "Coupling", tr.Best.Coupling, tr.TestCase.Thresholds.Coupling)
		r.printComponentRow(w, "Volatility", tr.Best.Volatility, tr.TestCase.Thresholds.Volatility)
		r.printComponentRow(w, "Traceability", tr.Best.Traceability, tr.TestCase.Thresholds.Traceability)
		r.printComponentRow(w, "Connectivity", tr.Best.Connectivity, tr.TestCase.Thresholds.Connectivity)
	}
	fmt.Fprintln(w, "+--------------------------------------------------------------+")
	fmt.Fprintln(w)
}

// printComponentRow prints one score component with a progress bar and
// a pass/fail mark against threshold (0 means no requirement).
func (r *Reporter) printComponentRow(w io.Writer, name string, value, threshold float64) {
	bar := r.progressBar(value, 20)
	status := " "
	if threshold > 0 {
		if value >= threshold {
			status = "+"
		} else {
			status = "x"
		}
	}
	threshStr := ""
	if threshold > 0 {
		threshStr = fmt.Sprintf(" (target: %.2f)", threshold)
	}
	fmt.Fprintf(w, "| %s %-14s %s %.3f%s\n", status, name, bar, value, threshStr)
}

func (r *Reporter) progressBar(value float64, width int) string {
	filled := int(value * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
	return fmt.Sprintf("[%s]", bar)
}

// PrintDetails prints per-test-case search history.
func (r *Reporter) PrintDetails(result *EvalResult) {
	w := r.writer

	fmt.Fprintln(w)
	fmt.Fprintln(w, "+--------------------------------------------------------------+")
	fmt.Fprintln(w, "|                    Per-Test Results                          |")
	fmt.Fprintln(w, "+--------------------------------------------------------------+")
	fmt.Fprintln(w)

	for i, tr := range result.Results {
		status := "PASS"
		if tr.Error != "" {
			status = "ERROR"
		} else if !tr.Passed {
			status = "FAIL"
		}

		fmt.Fprintf(w, "[%s] Test %d: %s\n", status, i+1, tr.TestCase.Name)
		fmt.Fprintf(w, "  Iterations: %d | Stop: %s | Duration: %v\n",
			tr.Report.Iterations, tr.Report.StopReason, tr.Duration.Round(time.Microsecond))

		if tr.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", tr.Error)
		} else {
			fmt.Fprintf(w, "  Front size: %d | Moves tried: %d\n", len(tr.Report.Front.Variants()), len(tr.Report.Steps))
		}
		fmt.Fprintln(w)
	}
}

// PrintJSON writes result as indented JSON.
func (r *Reporter) PrintJSON(result *EvalResult) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// SaveJSON writes result as indented JSON to path.
func (r *Reporter) SaveJSON(result *EvalResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("optimizer: creating report file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// PrintCompact prints a one-line summary.
func (r *Reporter) PrintCompact(result *EvalResult) {
	status := "PASS"
	if result.FailedTests > 0 {
		status = "FAIL"
	}
	fmt.Fprintf(r.writer, "[%s] %d/%d tests | %v\n",
		status, result.PassedTests, result.TotalTests, result.Duration.Round(time.Millisecond))
}
