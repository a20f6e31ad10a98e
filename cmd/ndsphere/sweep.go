package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/nao1215/ndsphere/internal/config"
	"github.com/nao1215/ndsphere/internal/database"
	"github.com/nao1215/ndsphere/internal/model"
	"github.com/nao1215/ndsphere/internal/pipeline"
	"github.com/nao1215/ndsphere/internal/report"
	"github.com/nao1215/ndsphere/internal/rng"
)

// NewSweepCmd creates the sweep command.
func NewSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sweep dimensions and sample counts to study convergence",
		Long: `Sweep runs one estimate for every dimension d and every sample count
N = 2^p with pmin <= p <= pmax, all drawn from a single seeded random
source so that the table is reproducible.

For each dimension it fits log(fractional error) against log(N); hit-or-miss
sampling should give a slope close to -0.5.

Examples:
  # Default sweep: d = 3,5,10 and N = 2^6 .. 2^18, writes convergence.csv/png
  ndsphere sweep

  # Custom grid with five replicates and a Markdown report
  ndsphere sweep --dims 2,4,8 --pmin 4 --pmax 16 --replicates 5 -m -o report.md

  # Extra exports and save the run to the history database
  ndsphere sweep --html report.html --json report.json --xlsx report.xlsx --save

Configuration file (.ndsphere) example:
  sweep:
    dims: [3, 5, 10]
    pmin: 6
    pmax: 18
  output:
    csv: convergence.csv
    plot: convergence.png`,
		Args: cobra.NoArgs,
		RunE: runSweepCmd,
	}

	// Grid flags
	cmd.Flags().IntSlice("dims", config.DefaultDims(), "Dimensions to sweep")
	cmd.Flags().Int("pmin", config.DefaultMinPower, "Smallest sample count exponent (N = 2^pmin)")
	cmd.Flags().Int("pmax", config.DefaultMaxPower, "Largest sample count exponent (N = 2^pmax)")
	cmd.Flags().Float64("radius", config.DefaultRadius, "Ball radius")

	// Randomness flags
	cmd.Flags().Uint64("seed", config.DefaultSeed, "Seed of the random source")
	cmd.Flags().String("source", string(rng.DefaultKind), "Random source: "+kindNames())
	cmd.Flags().Int("replicates", config.DefaultReplicates, "Independent sweeps used for error statistics")

	// Output flags
	cmd.Flags().String("csv", config.DefaultCSVFile, "CSV table path (empty to disable)")
	cmd.Flags().String("plot", config.DefaultPlotFile, "Plot path, .png/.svg/.pdf/.eps/.jpg/.tif (empty to disable)")
	cmd.Flags().Float64("plot-width", config.DefaultPlotWidth, "Plot width in inches")
	cmd.Flags().Float64("plot-height", config.DefaultPlotHeight, "Plot height in inches")
	cmd.Flags().Int("plot-dpi", config.DefaultPlotDPI, "Resolution of raster plots")
	cmd.Flags().BoolP("markdown", "m", false, "Print a Markdown report instead of plain text")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().String("html", "", "HTML report path")
	cmd.Flags().String("json", "", "JSON report path")
	cmd.Flags().String("xlsx", "", "Excel workbook path")
	cmd.Flags().Bool("save", false, "Save the run to the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")
	cmd.Flags().Bool("progress", false, "Show a progress bar on stderr")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .ndsphere in current or home directory, then ~/.config/ndsphere/config.yaml)")

	return cmd
}

// runSweepCmd executes the sweep command.
func runSweepCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildSweepConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSweep(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// buildSweepConfig loads the configuration file and overlays the flags the
// user set explicitly.
func buildSweepConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("dims") {
		if cfg.Dims, err = flags.GetIntSlice("dims"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("pmin") {
		if cfg.MinPower, err = flags.GetInt("pmin"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("pmax") {
		if cfg.MaxPower, err = flags.GetInt("pmax"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("radius") {
		if cfg.Radius, err = flags.GetFloat64("radius"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("seed") {
		if cfg.Seed, err = flags.GetUint64("seed"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("source") {
		name, err := flags.GetString("source")
		if err != nil {
			return nil, err
		}
		cfg.Source = rng.Kind(name)
	}
	if flags.Changed("replicates") {
		if cfg.Replicates, err = flags.GetInt("replicates"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("plot-width") {
		if cfg.PlotWidth, err = flags.GetFloat64("plot-width"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("plot-height") {
		if cfg.PlotHeight, err = flags.GetFloat64("plot-height"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("plot-dpi") {
		if cfg.PlotDPI, err = flags.GetInt("plot-dpi"); err != nil {
			return nil, err
		}
	}

	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"csv", &cfg.CSVFile},
		{"plot", &cfg.PlotFile},
		{"output", &cfg.ReportFile},
		{"html", &cfg.HTMLFile},
		{"json", &cfg.JSONFile},
		{"xlsx", &cfg.XLSXFile},
		{"db-dir", &cfg.DBDir},
	}
	for _, f := range stringFlags {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetString(f.name); err != nil {
			return nil, err
		}
	}

	boolFlags := []struct {
		name string
		dst  *bool
	}{
		{"markdown", &cfg.MarkdownReport},
		{"save", &cfg.SaveToDB},
		{"progress", &cfg.Progress},
	}
	for _, f := range boolFlags {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetBool(f.name); err != nil {
			return nil, err
		}
	}

	cfg.Verbose = getBoolFlag(cmd, "verbose")
	return cfg, nil
}

// runSweep executes the pipeline, prints the report, writes the exports and
// optionally stores the run.
func runSweep(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger) error {
	params := cfg.Params()
	logger.Info("starting sweep",
		"dims", params.Dims,
		"pmin", params.MinPower,
		"pmax", params.MaxPower,
		"radius", params.Radius,
		"seed", params.Seed,
		"source", params.Source,
		"replicates", params.Replicates,
	)

	src, err := rng.New(cfg.Source, cfg.Seed)
	if err != nil {
		return err
	}

	configOpts := []pipeline.DefaultPipelineOption{pipeline.WithPipelineLogger(logger)}
	var bar *pb.ProgressBar
	if cfg.Progress {
		bar = pb.New(params.Replicates * params.Combinations())
		bar.SetWriter(stderr)
		bar.Start()
		configOpts = append(configOpts, pipeline.WithPipelineProgress(func(done, _ int) {
			bar.SetCurrent(int64(done))
		}))
	}

	p := pipeline.DefaultPipeline(src, params, []pipeline.Option{pipeline.WithLogger(logger)}, configOpts...)
	rep := model.NewSweepReport(params)
	err = p.Execute(ctx, rep)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	if err := outputReport(cfg, rep, stdout); err != nil {
		return err
	}

	if err := exportFiles(ctx, cfg, rep, stdout, logger); err != nil {
		return err
	}

	if cfg.SaveToDB {
		if err := saveRun(ctx, cfg.DBDir, rep, logger); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Saved run %s\n", rep.ID)
	}
	return nil
}

// outputReport writes the plain text or Markdown report to stdout or to
// cfg.ReportFile.
func outputReport(cfg *config.Config, rep *model.SweepReport, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		f, err := pipeline.CreateFile(cfg.ReportFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	if cfg.MarkdownReport {
		w = report.NewMarkdownWriter(output)
	} else {
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
	if _, err := w.Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if cfg.ReportFile != "" {
		fmt.Fprintf(stdout, "Wrote %s\n", cfg.ReportFile)
	}
	return nil
}

// sweepExports lists the file exports enabled in cfg.
func sweepExports(cfg *config.Config) ([]pipeline.Export, error) {
	var exports []pipeline.Export
	if cfg.CSVFile != "" {
		exports = append(exports, pipeline.Export{
			Path:      cfg.CSVFile,
			NewWriter: func(w io.Writer) report.Writer { return report.NewCSVWriter(w) },
		})
	}
	if cfg.PlotFile != "" {
		format, err := report.PlotFormatFromPath(cfg.PlotFile)
		if err != nil {
			return nil, err
		}
		opts := append(cfg.PlotOptions(), report.WithPlotFormat(format))
		exports = append(exports, pipeline.Export{
			Path: cfg.PlotFile,
			NewWriter: func(w io.Writer) report.Writer {
				return report.NewPlotWriter(w, opts...)
			},
		})
	}
	if cfg.HTMLFile != "" {
		exports = append(exports, pipeline.Export{
			Path:      cfg.HTMLFile,
			NewWriter: func(w io.Writer) report.Writer { return report.NewHTMLWriter(w) },
		})
	}
	if cfg.JSONFile != "" {
		exports = append(exports, pipeline.Export{
			Path: cfg.JSONFile,
			NewWriter: func(w io.Writer) report.Writer {
				return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
			},
		})
	}
	if cfg.XLSXFile != "" {
		exports = append(exports, pipeline.Export{
			Path:      cfg.XLSXFile,
			NewWriter: func(w io.Writer) report.Writer { return report.NewXLSXWriter(w) },
		})
	}
	return exports, nil
}

// exportFiles writes every enabled export and prints "Wrote <path>" for each
// file in the order they were configured.
func exportFiles(ctx context.Context, cfg *config.Config, rep *model.SweepReport, stdout io.Writer, logger *slog.Logger) error {
	exports, err := sweepExports(cfg)
	if err != nil {
		return err
	}
	if len(exports) == 0 {
		return nil
	}

	batch := pipeline.NewExportBatch(pipeline.WithBatchLogger(logger))
	results, err := batch.ExportAll(ctx, rep, exports)
	for _, res := range results {
		if res.Path != "" && res.Err == nil {
			fmt.Fprintf(stdout, "Wrote %s\n", res.Path)
		}
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

// saveRun stores the report in the run database.
func saveRun(ctx context.Context, dbDir string, rep *model.SweepReport, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveRun(ctx, rep); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	logger.Info("run saved to database", "id", rep.ID, "path", db.Path())
	return nil
}
