package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/nao1215/ndsphere/internal/model"
)

// CSVHeader is the column order of the sweep table.
var CSVHeader = []string{
	"d", "N", "sqrtN", "estimate", "true", "fractional_error",
	"sigma", "sigma_frac", "inside", "r",
}

// CSVWriter outputs the sweep table as CSV with CRLF line endings and
// FormatFloat values, matching files written by the classic tool.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the header and one record per row.
func (w *CSVWriter) Write(report *model.SweepReport) (int, error) {
	if len(report.Rows) == 0 {
		return 0, ErrNoRows
	}

	cw := &countingWriter{w: w.output}
	enc := csv.NewWriter(cw)
	enc.UseCRLF = true

	if err := enc.Write(CSVHeader); err != nil {
		return cw.n, err
	}
	for _, row := range report.Rows {
		if err := enc.Write(csvRecord(row)); err != nil {
			return cw.n, err
		}
	}
	enc.Flush()
	return cw.n, enc.Error()
}

func csvRecord(row model.Row) []string {
	return []string{
		strconv.Itoa(row.D),
		strconv.Itoa(row.N),
		FormatFloat(row.SqrtN),
		FormatFloat(row.Estimate),
		FormatFloat(row.True),
		FormatFloat(row.FractionalError),
		FormatFloat(row.Sigma),
		FormatFloat(row.SigmaFrac),
		strconv.Itoa(row.Inside),
		FormatFloat(row.R),
	}
}
