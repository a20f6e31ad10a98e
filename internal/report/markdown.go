package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/ndsphere/internal/model"
	"github.com/nao1215/ndsphere/internal/volume"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown.
// This format is designed for documentation and sharing: parameter and
// result tables, a mermaid pie chart of hits at the largest N, and an alert
// when a convergence slope is off.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.SweepReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writeFits(md, report)
	for _, d := range report.Dims() {
		w.writeDimension(md, report, d)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SweepReport) {
	p := report.Params

	md.H1("Monte Carlo d-ball Volume Convergence")
	md.PlainText("")

	rows := [][]string{
		{"Dimensions", joinInts(p.Dims)},
		{"Sample counts", fmt.Sprintf("2^%d … 2^%d", p.MinPower, p.MaxPower)},
		{"Radius", FormatFloat(p.Radius)},
		{"Seed", fmt.Sprintf("`%d` (%s)", p.Seed, p.Source)},
		{"Replicates", strconv.Itoa(max(p.Replicates, 1))},
		{"Total draws", FormatCount(report.TotalSamples())},
		{"Date", report.CreatedAt.Format("2006-01-02 15:04:05 MST")},
		{"Status", statusText(report)},
	}
	if report.ID != "" {
		rows = append(rows, []string{"Run ID", "`" + report.ID + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func statusText(report *model.SweepReport) string {
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.SweepReport) {
	var poor, unknown []string
	for _, f := range report.Fits {
		switch f.Verdict {
		case model.VerdictPoor:
			poor = append(poor, fmt.Sprintf("d=%d (slope %.3f)", f.D, f.Slope))
		case model.VerdictUnknown:
			unknown = append(unknown, "d="+strconv.Itoa(f.D))
		}
	}

	switch {
	case report.Error != "":
		md.Cautionf("The sweep did not complete: %s", report.Error)
	case len(poor) > 0:
		md.Warningf(
			"Convergence deviates from 1/√N by more than %.2f in slope for %s. Single-run errors are noisy; try --replicates.",
			model.SlopeTolerance, strings.Join(poor, ", "),
		)
	case len(unknown) > 0:
		md.Notef("Too few non-zero errors to fit a slope for %s.", strings.Join(unknown, ", "))
	case len(report.Fits) > 0:
		md.Tip("All fitted slopes are consistent with 1/√N convergence.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFits(md *markdown.Markdown, report *model.SweepReport) {
	if len(report.Fits) == 0 {
		return
	}

	md.H2("Convergence Fits")
	md.PlainText("")
	md.PlainText("Least-squares fit of log(fractional error) against log(N); the expected slope is -0.5.")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Fits))
	for _, f := range report.Fits {
		if f.Verdict == model.VerdictUnknown {
			rows = append(rows, []string{strconv.Itoa(f.D), strconv.Itoa(f.Points), "-", "-", "-", "-", verdictText(f.Verdict)})
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(f.D),
			strconv.Itoa(f.Points),
			formatFixed(f.Slope, 4),
			formatFixed(f.Intercept, 4),
			formatFixed(f.RSquared, 4),
			formatFixed(f.SigmaSlope, 4),
			verdictText(f.Verdict),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"d", "Points", "Slope", "Intercept", "R²", "σ slope", "Verdict"},
		Rows:   rows,
	})
	md.PlainText("")
}

func verdictText(v model.Verdict) string {
	switch v {
	case model.VerdictGood:
		return "🟢 Good"
	case model.VerdictFair:
		return "🟡 Fair"
	case model.VerdictPoor:
		return "🔴 Poor"
	default:
		return "⚪ Unknown"
	}
}

func (w *MarkdownWriter) writeDimension(md *markdown.Markdown, report *model.SweepReport, d int) {
	rows := report.RowsFor(d)
	if len(rows) == 0 {
		return
	}

	md.H2(fmt.Sprintf("d = %d", d))
	md.PlainText("")
	md.PlainTextf("Exact volume: `%s`", FormatFloat(rows[0].True))
	if p, err := volume.HitProbability(d); err == nil {
		md.PlainText("")
		md.PlainTextf("Expected hit rate: `%s`", formatFixed(p, 6))
	}
	md.PlainText("")

	table := make([][]string, len(rows))
	for i, row := range rows {
		table[i] = []string{
			FormatCount(row.N),
			formatFixed(row.SqrtN, 6),
			formatFixed(row.Estimate, 8),
			formatFixed(row.Sigma, 4),
			formatFixed(row.FractionalError, 4),
			formatFixed(row.SigmaFrac, 4),
			FormatCount(row.Inside),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"N", "√N", "Estimate", "σ", "Fractional error", "σ / V", "Inside"},
		Rows:   table,
	})
	md.PlainText("")

	if reps := report.ReplicatesFor(d); len(reps) > 0 {
		md.H3("Replicates")
		md.PlainText("")
		repRows := make([][]string, len(reps))
		for i, s := range reps {
			repRows[i] = []string{
				FormatCount(s.N),
				strconv.Itoa(s.Replicates),
				formatFixed(s.MeanEstimate, 8),
				formatFixed(s.MeanError, 4),
				formatFixed(s.MedianError, 4),
				formatFixed(s.StdDevError, 4),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"N", "Runs", "Mean estimate", "Mean error", "Median error", "Std. dev."},
			Rows:   repRows,
		})
		md.PlainText("")
	}

	if largest, ok := report.LargestRow(d); ok {
		w.writePieChart(md, largest)
	}
}

// writePieChart writes a mermaid pie chart of hits and misses.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, row model.Row) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(fmt.Sprintf("Samples inside the %d-ball at N = %s", row.D, FormatCount(row.N))),
		piechart.WithShowData(true),
	)
	// Inside and Outside are both in [0, N].
	chart.LabelAndIntValue("Inside", uint64(row.Inside))     //nolint:gosec
	chart.LabelAndIntValue("Outside", uint64(row.Outside())) //nolint:gosec

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by ndsphere*")
}
