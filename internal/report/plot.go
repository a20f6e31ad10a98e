package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/nao1215/ndsphere/internal/model"
)

// Plot defaults reproduce the classic figure: 6.4×4.8 in at 160 dpi.
const (
	DefaultPlotWidth  = 6.4 * vg.Inch
	DefaultPlotHeight = 4.8 * vg.Inch
	DefaultPlotDPI    = 160

	// PlotTitle is the title of the convergence plot.
	PlotTitle = "MC convergence for unit d-sphere (hit-or-miss)"
)

// PlotWriter draws fractional error against √N for every dimension, with
// σ/V error bars, a legend entry "d=<d>" per dimension and a dotted grid.
type PlotWriter struct {
	baseWriter

	format string
	width  vg.Length
	height vg.Length
	dpi    int
}

// PlotWriterOption configures a PlotWriter.
type PlotWriterOption func(*PlotWriter)

// WithPlotFormat selects the image format: png, svg, pdf, eps, jpg or tif.
func WithPlotFormat(format string) PlotWriterOption {
	return func(w *PlotWriter) {
		w.format = strings.ToLower(format)
	}
}

// WithPlotSize sets the figure size.
func WithPlotSize(width, height vg.Length) PlotWriterOption {
	return func(w *PlotWriter) {
		w.width, w.height = width, height
	}
}

// WithPlotDPI sets the raster resolution of PNG output.
func WithPlotDPI(dpi int) PlotWriterOption {
	return func(w *PlotWriter) {
		if dpi > 0 {
			w.dpi = dpi
		}
	}
}

// NewPlotWriter creates a PlotWriter that outputs PNG unless another format
// is selected.
func NewPlotWriter(output io.Writer, opts ...PlotWriterOption) *PlotWriter {
	w := &PlotWriter{
		baseWriter: newBaseWriter(output),
		format:     "png",
		width:      DefaultPlotWidth,
		height:     DefaultPlotHeight,
		dpi:        DefaultPlotDPI,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// PlotFormatFromPath returns the image format implied by the file extension.
func PlotFormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "png", "svg", "pdf", "eps", "jpg", "jpeg", "tif", "tiff":
		return ext, nil
	default:
		return "", fmt.Errorf("%w: %q (use .png, .svg, .pdf, .eps, .jpg or .tif)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Write renders the plot.
func (w *PlotWriter) Write(report *model.SweepReport) (int, error) {
	if len(report.Rows) == 0 {
		return 0, ErrNoRows
	}

	p, err := w.build(report)
	if err != nil {
		return 0, err
	}

	cw := &countingWriter{w: w.output}
	if w.format == "png" {
		c := vgimg.NewWith(vgimg.UseWH(w.width, w.height), vgimg.UseDPI(w.dpi))
		p.Draw(draw.New(c))
		_, err = vgimg.PngCanvas{Canvas: c}.WriteTo(cw)
		return cw.n, err
	}

	wt, err := p.WriterTo(w.width, w.height, w.format)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	_, err = wt.WriteTo(cw)
	return cw.n, err
}

// errorPoints pairs the points with their vertical error bars.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

func (w *PlotWriter) build(report *model.SweepReport) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = PlotTitle
	p.X.Label.Text = "√N"
	p.Y.Label.Text = "fractional error"
	p.Legend.Top = true

	grid := plotter.NewGrid()
	dotted := []vg.Length{vg.Points(1), vg.Points(2)}
	grid.Vertical.Dashes = dotted
	grid.Vertical.Width = vg.Points(0.5)
	grid.Horizontal.Dashes = dotted
	grid.Horizontal.Width = vg.Points(0.5)
	p.Add(grid)

	for i, d := range report.Dims() {
		rows := report.RowsFor(d)
		pts := errorPoints{
			XYs:     make(plotter.XYs, len(rows)),
			YErrors: make(plotter.YErrors, len(rows)),
		}
		for j, r := range rows {
			pts.XYs[j] = plotter.XY{X: r.SqrtN, Y: r.FractionalError}
			pts.YErrors[j].Low = r.SigmaFrac
			pts.YErrors[j].High = r.SigmaFrac
		}

		scatter, err := plotter.NewScatter(pts.XYs)
		if err != nil {
			return nil, fmt.Errorf("plot d=%d: %w", d, err)
		}
		scatter.GlyphStyle.Color = plotutil.Color(i)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}

		bars, err := plotter.NewYErrorBars(pts)
		if err != nil {
			return nil, fmt.Errorf("plot d=%d: %w", d, err)
		}
		bars.LineStyle.Color = plotutil.Color(i)
		bars.CapWidth = vg.Points(6)

		p.Add(bars, scatter)
		p.Legend.Add(fmt.Sprintf("d=%d", d), scatter)
	}

	return p, nil
}
