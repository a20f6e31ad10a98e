package report

import (
	"bytes"
	"io"

	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/nao1215/ndsphere/internal/model"
)

// HTMLWriter renders the Markdown report as a complete HTML page, for
// viewing a sweep in a browser without a Markdown renderer.
type HTMLWriter struct {
	baseWriter

	title string
}

// HTMLWriterOption configures an HTMLWriter.
type HTMLWriterOption func(*HTMLWriter)

// WithTitle sets the HTML page title.
func WithTitle(title string) HTMLWriterOption {
	return func(w *HTMLWriter) {
		w.title = title
	}
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer, opts ...HTMLWriterOption) *HTMLWriter {
	w := &HTMLWriter{
		baseWriter: newBaseWriter(output),
		title:      "ndsphere convergence report",
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report as HTML.
func (w *HTMLWriter) Write(report *model.SweepReport) (int, error) {
	var md bytes.Buffer
	if _, err := NewMarkdownWriter(&md).Write(report); err != nil {
		return 0, err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: w.title,
	})
	return w.output.Write(gomarkdown.ToHTML(md.Bytes(), p, r))
}
