package report

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/ndsphere/internal/model"
)

// createTestReport creates a two-dimension sweep report with fits.
func createTestReport() *model.SweepReport {
	r := &model.SweepReport{
		ID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Elapsed:   1500 * time.Millisecond,
		Params: model.Params{
			Dims: []int{3, 5}, MinPower: 6, MaxPower: 7, Radius: 1,
			Seed: 42, Source: "pcg", Replicates: 1,
		},
	}
	r.AddRow(model.Row{D: 3, N: 64, SqrtN: 8, Estimate: 4.125, True: 4.1887902047863905, FractionalError: 0.015226, Sigma: 0.3, SigmaFrac: 0.0716, Inside: 33, R: 1})
	r.AddRow(model.Row{D: 3, N: 128, SqrtN: 11.313708498984761, Estimate: 4.25, True: 4.1887902047863905, FractionalError: 0.014613, Sigma: 0.2, SigmaFrac: 0.0477, Inside: 68, R: 1})
	r.AddRow(model.Row{D: 5, N: 64, SqrtN: 8, Estimate: 5, True: 5.263789013914324, FractionalError: 0.050114, Sigma: 1.9, SigmaFrac: 0.36, Inside: 10, R: 1})
	r.AddRow(model.Row{D: 5, N: 128, SqrtN: 11.313708498984761, Estimate: 5.5, True: 5.263789013914324, FractionalError: 0.044874, Sigma: 1.4, SigmaFrac: 0.27, Inside: 22, R: 1})
	r.Fits = []model.Fit{
		{D: 3, Points: 2, Slope: -0.06, Intercept: -4, RSquared: 1, SigmaSlope: -0.5, Verdict: model.VerdictPoor},
		{D: 5, Points: 2, Slope: -0.45, Intercept: -2, RSquared: 1, SigmaSlope: -0.5, Verdict: model.VerdictGood},
	}
	return r
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		n, err := NewMultiWriter(NewCSVWriter(&a), NewJSONWriter(&b)).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != a.Len()+b.Len() {
			t.Errorf("expected %d bytes, got %d", a.Len()+b.Len(), n)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var b bytes.Buffer
		_, err := NewMultiWriter(NewCSVWriter(&b), NewJSONWriter(&b)).Write(&model.SweepReport{})
		if !errors.Is(err, ErrNoRows) {
			t.Errorf("expected ErrNoRows, got %v", err)
		}
		if b.Len() != 0 {
			t.Error("expected no output after the first failure")
		}
	})
}

// TestCSVWriter tests the CSV table format.
func TestCSVWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes the classic header, values and CRLF line endings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewCSVWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		lines := strings.Split(buf.String(), "\r\n")
		if len(lines) != 6 || lines[5] != "" {
			t.Fatalf("expected 5 CRLF-terminated lines, got %q", buf.String())
		}
		if lines[0] != "d,N,sqrtN,estimate,true,fractional_error,sigma,sigma_frac,inside,r" {
			t.Errorf("unexpected header %q", lines[0])
		}
		want := "3,64,8.0,4.125,4.1887902047863905,0.015226,0.3,0.0716,33,1.0"
		if lines[1] != want {
			t.Errorf("got %q, expected %q", lines[1], want)
		}
	})

	t.Run("rejects an empty report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewCSVWriter(&buf).Write(&model.SweepReport{}); !errors.Is(err, ErrNoRows) {
			t.Errorf("expected ErrNoRows, got %v", err)
		}
	})
}

// TestJSONWriter tests JSON output.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("round trips the rows", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"") {
			t.Error("expected indented output")
		}

		var decoded model.SweepReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded.Rows) != 4 || decoded.Rows[1].N != 128 {
			t.Errorf("unexpected rows %+v", decoded.Rows)
		}
		if decoded.Params.Seed != 42 {
			t.Errorf("expected seed 42, got %d", decoded.Params.Seed)
		}
	})

	t.Run("wraps the report with a version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithVersion("v1.2.3")).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var env JSONReport
		if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if env.Version != "v1.2.3" || env.Report == nil || len(env.Report.Rows) != 4 {
			t.Errorf("unexpected envelope %+v", env)
		}
	})
}

// TestSimpleWriter tests the terminal report.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"MONTE CARLO d-BALL VOLUME CONVERGENCE",
		"Dimensions:  3, 5",
		"N = 2^6 ... 2^7 (2 points per dimension)",
		"Seed:        42 (pcg)",
		"Total draws: 384 points",
		"Elapsed:     1.5s",
		"d = 3",
		"d = 5",
		"hit rate",
		"POOR",
		"GOOD",
		"Run ID: 0f8fad5b-d9cb-469f-a165-70867728950e",
		"consider more replicates",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

// TestMarkdownWriter tests the Markdown report.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("includes tables, pie charts and a warning for poor fits", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()

		for _, want := range []string{
			"# Monte Carlo d-ball Volume Convergence",
			"## Convergence Fits",
			"## d = 3",
			"## d = 5",
			"```mermaid",
			"pie",
			"Inside",
			"[!WARNING]",
			"d=3 (slope -0.060)",
			"Expected hit rate: `0.523599`",
			"0f8fad5b-d9cb-469f-a165-70867728950e",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q\n%s", want, out)
			}
		}
	})

	t.Run("shows a tip when every fit is good", func(t *testing.T) {
		t.Parallel()

		r := createTestReport()
		r.Fits[0].Verdict = model.VerdictGood
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!TIP]") {
			t.Errorf("expected a tip alert\n%s", buf.String())
		}
	})

	t.Run("includes replicate statistics", func(t *testing.T) {
		t.Parallel()

		r := createTestReport()
		r.Replicates = []model.ReplicateStat{{D: 3, N: 64, Replicates: 5, MeanError: 0.02}}
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "### Replicates") {
			t.Errorf("expected replicate section\n%s", buf.String())
		}
	})
}

// TestHTMLWriter tests the HTML rendering of the Markdown report.
func TestHTMLWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewHTMLWriter(&buf, WithTitle("sweep 42")).Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"<html", "<title>sweep 42</title>", "<table>", "<h1", "Monte Carlo d-ball Volume Convergence"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

// TestXLSXWriter tests the Excel workbook.
func TestXLSXWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewXLSXWriter(&buf).Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != buf.Len() || n == 0 {
		t.Fatalf("reported %d bytes, wrote %d", n, buf.Len())
	}
	if _, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
		t.Fatalf("workbook is not a valid zip archive: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("convergence")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 5 || rows[0][0] != "d" || rows[2][1] != "128" {
		t.Errorf("unexpected convergence sheet %v", rows)
	}

	fits, err := f.GetRows("fits")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fits) != 3 || fits[1][6] != "POOR" {
		t.Errorf("unexpected fits sheet %v", fits)
	}
}

// TestPlotWriter tests the convergence plot.
func TestPlotWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes a PNG by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewPlotWriter(&buf, WithPlotDPI(72)).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
			t.Error("expected PNG signature")
		}
	})

	t.Run("writes SVG when selected", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewPlotWriter(&buf, WithPlotFormat("svg")).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "<svg") {
			t.Error("expected SVG output")
		}
	})

	t.Run("rejects an unknown format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewPlotWriter(&buf, WithPlotFormat("bmp")).Write(createTestReport())
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("rejects an empty report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewPlotWriter(&buf).Write(&model.SweepReport{}); !errors.Is(err, ErrNoRows) {
			t.Errorf("expected ErrNoRows, got %v", err)
		}
	})
}

// TestPlotFormatFromPath tests format detection from file names.
func TestPlotFormatFromPath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"convergence.png", "png", false},
		{"out/plot.SVG", "svg", false},
		{"figure.pdf", "pdf", false},
		{"figure.bmp", "", true},
		{"noext", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()
			got, err := PlotFormatFromPath(tc.path)
			if tc.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("got %q, %v; expected %q", got, err, tc.want)
			}
		})
	}
}
