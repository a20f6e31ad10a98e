package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/ndsphere/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display:
// one aligned table per dimension followed by the convergence fits.
// Plain ASCII layout keeps the output pipeable into files or other tools.
type SimpleWriter struct {
	baseWriter

	// verbose adds the sigma and hit-rate columns.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional columns.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.SweepReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	for _, d := range report.Dims() {
		w.writeDimension(&sb, report, d)
	}
	w.writeReplicates(&sb, report)
	w.writeFits(&sb, report)
	w.writeFooter(&sb, report)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.SweepReport) {
	p := report.Params

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("            MONTE CARLO d-BALL VOLUME CONVERGENCE\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Dimensions:  %s\n", joinInts(p.Dims))
	fmt.Fprintf(sb, "Samples:     N = 2^%d ... 2^%d (%s per dimension)\n",
		p.MinPower, p.MaxPower, pluralize(len(p.SampleCounts()), "point"))
	fmt.Fprintf(sb, "Radius:      %s\n", FormatFloat(p.Radius))
	fmt.Fprintf(sb, "Seed:        %d (%s)\n", p.Seed, p.Source)
	if p.Replicates > 1 {
		fmt.Fprintf(sb, "Replicates:  %d\n", p.Replicates)
	}
	fmt.Fprintf(sb, "Total draws: %s points\n", FormatCount(report.TotalSamples()))
	if report.Elapsed > 0 {
		fmt.Fprintf(sb, "Elapsed:     %s\n", report.Elapsed.Round(time.Millisecond))
	}
	if report.Error != "" {
		fmt.Fprintf(sb, "Status:      ERROR - %s\n", report.Error)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeDimension(sb *strings.Builder, report *model.SweepReport, d int) {
	rows := report.RowsFor(d)
	if len(rows) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "d = %d    exact volume %s\n", d, formatFixed(rows[0].True, 10))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	if w.verbose {
		fmt.Fprintf(sb, "%12s  %14s  %12s  %12s  %9s\n", "N", "estimate", "sigma", "frac. error", "hit rate")
	} else {
		fmt.Fprintf(sb, "%12s  %14s  %12s  %12s\n", "N", "estimate", "sigma", "frac. error")
	}
	for _, row := range rows {
		if w.verbose {
			fmt.Fprintf(sb, "%12s  %14.8g  %12.4g  %12.4g  %9.5f\n",
				FormatCount(row.N), row.Estimate, row.Sigma, row.FractionalError, row.HitRate())
			continue
		}
		fmt.Fprintf(sb, "%12s  %14.8g  %12.4g  %12.4g\n",
			FormatCount(row.N), row.Estimate, row.Sigma, row.FractionalError)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeReplicates(sb *strings.Builder, report *model.SweepReport) {
	if len(report.Replicates) == 0 {
		return
	}

	sb.WriteString("REPLICATE ERROR STATISTICS\n")
	fmt.Fprintf(sb, "%4s  %12s  %12s  %12s  %12s\n", "d", "N", "mean", "median", "stddev")
	for _, s := range report.Replicates {
		fmt.Fprintf(sb, "%4d  %12s  %12.4g  %12.4g  %12.4g\n",
			s.D, FormatCount(s.N), s.MeanError, s.MedianError, s.StdDevError)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFits(sb *strings.Builder, report *model.SweepReport) {
	if len(report.Fits) == 0 {
		return
	}

	sb.WriteString("CONVERGENCE (log fractional error vs log N, expected slope -0.5)\n")
	fmt.Fprintf(sb, "%4s  %8s  %10s  %8s  %11s  %s\n", "d", "slope", "intercept", "R^2", "sigma slope", "verdict")
	for _, f := range report.Fits {
		if f.Verdict == model.VerdictUnknown {
			fmt.Fprintf(sb, "%4d  %8s  %10s  %8s  %11s  %s\n", f.D, "-", "-", "-", "-", f.Verdict)
			continue
		}
		fmt.Fprintf(sb, "%4d  %8.3f  %10.3f  %8.3f  %11.3f  %s\n",
			f.D, f.Slope, f.Intercept, f.RSquared, f.SigmaSlope, f.Verdict)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.SweepReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	if report.HasPoorFits() {
		sb.WriteString("Some dimensions deviate from 1/sqrt(N) convergence; consider more replicates.\n")
	}
	if report.ID != "" {
		fmt.Fprintf(sb, "Run ID: %s\n", report.ID)
	}
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
