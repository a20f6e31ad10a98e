package config

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"

	"github.com/adrg/xdg"
	"gonum.org/v1/plot/vg"

	"github.com/nao1215/ndsphere/internal/model"
	"github.com/nao1215/ndsphere/internal/report"
	"github.com/nao1215/ndsphere/internal/rng"
)

// Default configuration values.
// The sweep defaults reproduce the classic convergence study: unit balls in
// 3, 5 and 10 dimensions with N = 2^6 … 2^18 samples and seed 42.
const (
	// DefaultMinPower is the smallest exponent p of N = 2^p.
	DefaultMinPower = 6

	// DefaultMaxPower is the largest exponent p of N = 2^p.
	DefaultMaxPower = 18

	// MaxPower bounds pmax. Larger values overflow the sample count on
	// 32-bit platforms and would not finish in practice.
	MaxPower = 40

	// DefaultRadius is the ball radius.
	DefaultRadius = 1.0

	// DefaultSeed is the seed of the sweep's random source.
	DefaultSeed uint64 = 42

	// DefaultReplicates is the number of independent sweeps.
	DefaultReplicates = 1

	// DefaultCSVFile is the CSV table written by a sweep.
	DefaultCSVFile = "convergence.csv"

	// DefaultPlotFile is the convergence plot written by a sweep.
	DefaultPlotFile = "convergence.png"

	// DefaultPlotWidth and DefaultPlotHeight are the figure size in inches.
	DefaultPlotWidth  = 6.4
	DefaultPlotHeight = 4.8

	// DefaultPlotDPI is the raster resolution of PNG plots.
	DefaultPlotDPI = report.DefaultPlotDPI

	// AppName is the application name used for XDG directory paths.
	AppName = "ndsphere"
)

// DefaultDims returns the default sweep dimensions.
func DefaultDims() []int {
	return []int{3, 5, 10}
}

// Config holds all configuration options for ndsphere.
// It is populated from defaults, then the configuration file, then CLI flags,
// and passed down explicitly rather than held in global state.
type Config struct {
	// Dims are the dimensions to sweep, in order.
	Dims []int

	// MinPower and MaxPower bound the sample counts N = 2^p, inclusive.
	MinPower int
	MaxPower int

	// Radius is the ball radius shared by every point of the sweep.
	Radius float64

	// Seed seeds the random source of the sweep.
	Seed uint64

	// Source selects the pseudo-random generator.
	Source rng.Kind

	// Replicates is the number of independent sweeps used for error
	// statistics. 1 disables replication.
	Replicates int

	// CSVFile is the path of the CSV table. Empty disables it.
	CSVFile string

	// PlotFile is the path of the convergence plot. The format follows the
	// extension (.png, .svg, .pdf). Empty disables it.
	PlotFile string

	// PlotWidth and PlotHeight are the figure size in inches.
	PlotWidth  float64
	PlotHeight float64

	// PlotDPI is the resolution of raster plots.
	PlotDPI int

	// ReportFile is the output file path for the terminal report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// MarkdownReport selects Markdown instead of plain text for the terminal
	// report.
	MarkdownReport bool

	// HTMLFile, JSONFile and XLSXFile are optional additional exports.
	HTMLFile string
	JSONFile string
	XLSXFile string

	// SaveToDB stores the finished sweep in the run database.
	SaveToDB bool

	// DBDir is the directory of the run database.
	// Defaults to the XDG data directory (~/.local/share/ndsphere on Linux).
	DBDir string

	// Progress enables the progress bar on stderr.
	Progress bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .ndsphere in the current directory,
	// then in the user's home directory, then for config.yaml in XDGConfigDir.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Dims:       DefaultDims(),
		MinPower:   DefaultMinPower,
		MaxPower:   DefaultMaxPower,
		Radius:     DefaultRadius,
		Seed:       DefaultSeed,
		Source:     rng.DefaultKind,
		Replicates: DefaultReplicates,
		CSVFile:    DefaultCSVFile,
		PlotFile:   DefaultPlotFile,
		PlotWidth:  DefaultPlotWidth,
		PlotHeight: DefaultPlotHeight,
		PlotDPI:    DefaultPlotDPI,
		DBDir:      XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for ndsphere.
// On Linux: ~/.local/share/ndsphere
// On macOS: ~/Library/Application Support/ndsphere
// On Windows: %LOCALAPPDATA%\ndsphere
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for ndsphere.
// On Linux: ~/.config/ndsphere
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found, wrapping one of the package's
// sentinel errors. On success Source is normalised to its canonical name.
func (c *Config) Validate() error {
	if err := ValidateGrid(c.Dims, c.MinPower, c.MaxPower, c.Radius); err != nil {
		return err
	}

	if c.Replicates < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidReplicates, c.Replicates)
	}

	kind, err := rng.ParseKind(string(c.Source))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownSource, err)
	}
	c.Source = kind

	if c.PlotFile != "" {
		if _, err := report.PlotFormatFromPath(c.PlotFile); err != nil {
			return fmt.Errorf("%w: %w", ErrUnsupportedPlotFormat, err)
		}
	}
	if !positive(c.PlotWidth) || !positive(c.PlotHeight) || c.PlotDPI < 1 {
		return fmt.Errorf("%w: got %vx%v in at %d dpi", ErrInvalidPlotSize, c.PlotWidth, c.PlotHeight, c.PlotDPI)
	}

	seen := make(map[string]bool)
	for _, path := range c.OutputFiles() {
		clean := filepath.Clean(path)
		if seen[clean] {
			return fmt.Errorf("%w: %s", ErrDuplicateOutput, path)
		}
		seen[clean] = true
	}

	return nil
}

// ValidateGrid checks the sweep grid: at least one dimension, every dimension
// >= 1, 0 <= pmin <= pmax <= MaxPower and a finite positive radius.
func ValidateGrid(dims []int, pmin, pmax int, r float64) error {
	if len(dims) == 0 {
		return ErrNoDimensions
	}
	for _, d := range dims {
		if d < 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidDimension, d)
		}
	}
	if pmin < 0 || pmin > pmax {
		return fmt.Errorf("%w: got pmin=%d pmax=%d", ErrInvalidPowerRange, pmin, pmax)
	}
	if pmax > MaxPower {
		return fmt.Errorf("%w: got %d, limit is %d", ErrPowerTooLarge, pmax, MaxPower)
	}
	if !positive(r) {
		return fmt.Errorf("%w: got %v", ErrInvalidRadius, r)
	}
	return nil
}

// positive reports whether v is finite and > 0.
func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// OutputFiles returns the configured export paths in a stable order,
// skipping disabled ones. ReportFile is included because it is written
// alongside the exports.
func (c *Config) OutputFiles() []string {
	var paths []string
	for _, p := range []string{c.ReportFile, c.CSVFile, c.PlotFile, c.HTMLFile, c.JSONFile, c.XLSXFile} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// PlotOptions returns the writer options for the configured plot size.
func (c *Config) PlotOptions() []report.PlotWriterOption {
	return []report.PlotWriterOption{
		report.WithPlotSize(vg.Length(c.PlotWidth)*vg.Inch, vg.Length(c.PlotHeight)*vg.Inch),
		report.WithPlotDPI(c.PlotDPI),
	}
}

// Params returns the sweep parameters recorded in reports.
func (c *Config) Params() model.Params {
	return model.Params{
		Dims:       slices.Clone(c.Dims),
		MinPower:   c.MinPower,
		MaxPower:   c.MaxPower,
		Radius:     c.Radius,
		Seed:       c.Seed,
		Source:     string(c.Source),
		Replicates: c.Replicates,
	}
}
