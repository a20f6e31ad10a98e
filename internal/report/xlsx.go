package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/ndsphere/internal/model"
)

const (
	xlsxTableSheet = "convergence"
	xlsxFitSheet   = "fits"
)

// XLSXWriter outputs an Excel workbook with the sweep table on a
// "convergence" sheet (CSV columns, numeric cells) and the fits on a "fits"
// sheet.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the workbook.
func (w *XLSXWriter) Write(report *model.SweepReport) (int, error) {
	if len(report.Rows) == 0 {
		return 0, ErrNoRows
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	if err := f.SetSheetName("Sheet1", xlsxTableSheet); err != nil {
		return 0, err
	}
	if err := writeSheet(f, xlsxTableSheet, tableRows(report)); err != nil {
		return 0, err
	}

	if len(report.Fits) > 0 {
		if _, err := f.NewSheet(xlsxFitSheet); err != nil {
			return 0, err
		}
		if err := writeSheet(f, xlsxFitSheet, fitRows(report)); err != nil {
			return 0, err
		}
	}

	cw := &countingWriter{w: w.output}
	if _, err := f.WriteTo(cw); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func tableRows(report *model.SweepReport) [][]any {
	header := make([]any, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = h
	}
	rows := [][]any{header}
	for _, r := range report.Rows {
		rows = append(rows, []any{
			r.D, r.N, r.SqrtN, r.Estimate, r.True, r.FractionalError,
			r.Sigma, r.SigmaFrac, r.Inside, r.R,
		})
	}
	return rows
}

func fitRows(report *model.SweepReport) [][]any {
	rows := [][]any{{"d", "points", "slope", "intercept", "r_squared", "sigma_slope", "verdict"}}
	for _, f := range report.Fits {
		rows = append(rows, []any{
			f.D, f.Points, f.Slope, f.Intercept, f.RSquared, f.SigmaSlope, f.Verdict.String(),
		})
	}
	return rows
}
