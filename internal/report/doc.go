// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - CSVWriter: the sweep table, byte-compatible with the classic tool
//   - PlotWriter: fractional error against √N with error bars (PNG/SVG/PDF)
//   - SimpleWriter: human-readable text output for terminal display
//   - MarkdownWriter: GitHub Flavored Markdown with tables, alerts and charts
//   - HTMLWriter: the Markdown report rendered as a standalone HTML page
//   - JSONWriter: structured JSON output for tool integration
//   - XLSXWriter: an Excel workbook with the table and the fits
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
