package config

import "github.com/nao1215/ndsphere/internal/rng"

// File represents the structure of the .ndsphere configuration file.
// Every field is optional; a field that is absent leaves the built-in
// default in place.
type File struct {
	// Sweep holds the sweep grid and the random source.
	Sweep SweepSection `yaml:"sweep,omitempty"`

	// Output holds the export paths.
	Output OutputSection `yaml:"output,omitempty"`

	// Database holds the run store settings.
	Database DatabaseSection `yaml:"database,omitempty"`
}

// SweepSection configures the sweep grid.
// Pointers distinguish "absent" from a legitimate zero such as pmin: 0.
type SweepSection struct {
	Dims       []int    `yaml:"dims,omitempty"`
	MinPower   *int     `yaml:"pmin,omitempty"`
	MaxPower   *int     `yaml:"pmax,omitempty"`
	Radius     *float64 `yaml:"radius,omitempty"`
	Seed       *uint64  `yaml:"seed,omitempty"`
	Source     string   `yaml:"source,omitempty"`
	Replicates *int     `yaml:"replicates,omitempty"`
}

// OutputSection configures the export files.
// An explicitly empty string disables that export.
type OutputSection struct {
	CSV      *string `yaml:"csv,omitempty"`
	Plot     *string `yaml:"plot,omitempty"`
	HTML     *string `yaml:"html,omitempty"`
	JSON     *string `yaml:"json,omitempty"`
	XLSX     *string `yaml:"xlsx,omitempty"`
	Markdown *bool   `yaml:"markdown,omitempty"`

	// PlotWidth and PlotHeight are in inches.
	PlotWidth  *float64 `yaml:"plot_width,omitempty"`
	PlotHeight *float64 `yaml:"plot_height,omitempty"`
	PlotDPI    *int     `yaml:"plot_dpi,omitempty"`
}

// DatabaseSection configures the run store.
type DatabaseSection struct {
	Save *bool  `yaml:"save,omitempty"`
	Dir  string `yaml:"dir,omitempty"`
}

// ApplyTo copies every value present in the file onto cfg.
func (f *File) ApplyTo(cfg *Config) {
	s := f.Sweep
	if len(s.Dims) > 0 {
		cfg.Dims = append([]int(nil), s.Dims...)
	}
	setIf(&cfg.MinPower, s.MinPower)
	setIf(&cfg.MaxPower, s.MaxPower)
	setIf(&cfg.Radius, s.Radius)
	setIf(&cfg.Seed, s.Seed)
	if s.Source != "" {
		cfg.Source = rng.Kind(s.Source)
	}
	setIf(&cfg.Replicates, s.Replicates)

	o := f.Output
	setIf(&cfg.CSVFile, o.CSV)
	setIf(&cfg.PlotFile, o.Plot)
	setIf(&cfg.HTMLFile, o.HTML)
	setIf(&cfg.JSONFile, o.JSON)
	setIf(&cfg.XLSXFile, o.XLSX)
	setIf(&cfg.MarkdownReport, o.Markdown)
	setIf(&cfg.PlotWidth, o.PlotWidth)
	setIf(&cfg.PlotHeight, o.PlotHeight)
	setIf(&cfg.PlotDPI, o.PlotDPI)

	setIf(&cfg.SaveToDB, f.Database.Save)
	if f.Database.Dir != "" {
		cfg.DBDir = f.Database.Dir
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
