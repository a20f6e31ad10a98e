package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/ndsphere/internal/model"
	"github.com/nao1215/ndsphere/internal/report"
)

// Export describes one output file produced from a finished sweep.
type Export struct {
	// Path is the destination file.
	Path string

	// NewWriter builds the report writer for the opened file.
	NewWriter func(w io.Writer) report.Writer
}

// ExportResult is the outcome of one Export.
type ExportResult struct {
	Path  string
	Bytes int
	Err   error
}

// FileCreator opens a destination for writing.
type FileCreator func(path string) (io.WriteCloser, error)

// CreateFile creates path and any missing parent directories.
func CreateFile(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // user-chosen output path
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

// ExportBatch writes a finished report to several files concurrently.
// Every export reads the same report and writes a distinct file, so they are
// independent; the report must not be modified while ExportAll runs.
type ExportBatch struct {
	concurrency int
	create      FileCreator
	logger      *slog.Logger
}

// BatchOption configures an ExportBatch.
type BatchOption func(*ExportBatch)

// WithBatchLogger sets a custom logger for export processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *ExportBatch) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of files written at once.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *ExportBatch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithFileCreator replaces how destination files are opened.
func WithFileCreator(create FileCreator) BatchOption {
	return func(b *ExportBatch) {
		b.create = create
	}
}

// NewExportBatch creates a new ExportBatch.
func NewExportBatch(opts ...BatchOption) *ExportBatch {
	b := &ExportBatch{
		concurrency: 4,
		create:      CreateFile,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// ExportAll writes every export and returns one result per export in input
// order. A failing export does not stop the others; the returned error joins
// all failures, or is the context error if the batch was cancelled first.
func (b *ExportBatch) ExportAll(ctx context.Context, rep *model.SweepReport, exports []Export) ([]ExportResult, error) {
	b.logger.Info("starting export", "files", len(exports), "concurrency", b.concurrency)
	start := time.Now()

	results := make([]ExportResult, len(exports))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, exp := range exports {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			n, err := b.export(rep, exp)
			results[i] = ExportResult{Path: exp.Path, Bytes: n, Err: err}
			if err != nil {
				b.logger.Warn("export failed", "path", exp.Path, "error", err)
				return nil
			}
			b.logger.Debug("export completed", "path", exp.Path, "bytes", n)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	b.logger.Info("export complete", "files", len(exports), "elapsed", time.Since(start))

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Path, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (b *ExportBatch) export(rep *model.SweepReport, exp Export) (n int, err error) {
	f, err := b.create(exp.Path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return exp.NewWriter(f).Write(rep)
}
