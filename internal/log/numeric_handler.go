package log

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strconv"
)

// NumericHandler wraps an slog.Handler and normalises float64 attributes.
// Non-finite values become strings; finite values are rounded to the
// configured number of significant digits when precision > 0.
type NumericHandler struct {
	handler   slog.Handler
	precision int
}

// Option configures the loggers built by this package.
type Option func(*options)

type options struct {
	precision int
}

// WithPrecision rounds finite float attributes to the given number of
// significant digits. Zero or less keeps full precision.
func WithPrecision(digits int) Option {
	return func(o *options) {
		o.precision = digits
	}
}

// NewNumericHandler creates a new NumericHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewNumericHandler(handler slog.Handler, precision int) *NumericHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &NumericHandler{handler: handler, precision: precision}
}

// Enabled reports whether the handler handles records at the given level.
func (h *NumericHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's float attributes and passes it on.
func (h *NumericHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.normalize(a))
		return true
	})
	return h.handler.Handle(ctx, out)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *NumericHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	normalized := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		normalized[i] = h.normalize(a)
	}
	return &NumericHandler{handler: h.handler.WithAttrs(normalized), precision: h.precision}
}

// WithGroup returns a new handler with the given group name.
func (h *NumericHandler) WithGroup(name string) slog.Handler {
	return &NumericHandler{handler: h.handler.WithGroup(name), precision: h.precision}
}

func (h *NumericHandler) normalize(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		normalized := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			normalized[i] = h.normalize(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(normalized...)}
	case slog.KindFloat64:
		f := a.Value.Float64()
		if s, ok := nonFinite(f); ok {
			return slog.String(a.Key, s)
		}
		if h.precision > 0 {
			return slog.Float64(a.Key, roundSignificant(f, h.precision))
		}
	}
	return a
}

func nonFinite(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "NaN", true
	case math.IsInf(f, 1):
		return "+Inf", true
	case math.IsInf(f, -1):
		return "-Inf", true
	}
	return "", false
}

func roundSignificant(f float64, digits int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'g', digits, 64), 64)
	if err != nil {
		return f
	}
	return r
}

// NewLogger creates a text slog.Logger with numeric normalisation.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool, opts ...Option) *slog.Logger {
	o := buildOptions(opts)
	return slog.New(NewNumericHandler(slog.NewTextHandler(w, handlerOptions(verbose)), o.precision))
}

// NewJSONLogger creates a JSON slog.Logger with numeric normalisation.
// Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool, opts ...Option) *slog.Logger {
	o := buildOptions(opts)
	return slog.New(NewNumericHandler(slog.NewJSONHandler(w, handlerOptions(verbose)), o.precision))
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
