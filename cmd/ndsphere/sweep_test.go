package main

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/nao1215/ndsphere/internal/config"
	"github.com/nao1215/ndsphere/internal/report"
)

// smallConfig writes a config file with a quick sweep grid and returns its path.
func smallConfig(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "ndsphere.yaml")
	content := `sweep:
  dims: [2, 3]
  pmin: 4
  pmax: 6
  seed: 11
output:
  csv: ""
  plot: ""
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

var savedRunPattern = regexp.MustCompile(`Saved run ([0-9a-f-]{36})`)

// TestNewSweepCmd tests the sweep command flags.
func TestNewSweepCmd(t *testing.T) {
	t.Parallel()

	cmd := NewSweepCmd()
	flags := []string{
		"dims", "pmin", "pmax", "radius", "seed", "source", "replicates",
		"csv", "plot", "markdown", "output", "html", "json", "xlsx",
		"save", "db-dir", "progress", "config",
	}
	for _, name := range flags {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
	if cmd.Flags().Lookup("config").Shorthand != "c" {
		t.Error("expected config shorthand 'c'")
	}
	if cmd.Flags().Lookup("markdown").Shorthand != "m" {
		t.Error("expected markdown shorthand 'm'")
	}
}

// TestRunSweepCmd tests the sweep command execution.
func TestRunSweepCmd(t *testing.T) {
	t.Parallel()

	t.Run("writes every export and saves the run", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		csvPath := filepath.Join(dir, "out", "convergence.csv")
		plotPath := filepath.Join(dir, "convergence.svg")
		htmlPath := filepath.Join(dir, "report.html")
		jsonPath := filepath.Join(dir, "report.json")
		xlsxPath := filepath.Join(dir, "report.xlsx")

		out, err := runRoot(t, "sweep",
			"-c", smallConfig(t, dir),
			"--csv", csvPath,
			"--plot", plotPath,
			"--html", htmlPath,
			"--json", jsonPath,
			"--xlsx", xlsxPath,
			"--save", "--db-dir", filepath.Join(dir, "db"),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, path := range []string{csvPath, plotPath, htmlPath, jsonPath, xlsxPath} {
			if !strings.Contains(out, "Wrote "+path+"\n") {
				t.Errorf("expected 'Wrote %s' in output", path)
			}
			if info, err := os.Stat(path); err != nil || info.Size() == 0 {
				t.Errorf("expected non-empty %s: %v", path, err)
			}
		}
		if !savedRunPattern.MatchString(out) {
			t.Errorf("expected saved run id in output:\n%s", out)
		}
		if !strings.Contains(out, "CONVERGENCE") {
			t.Errorf("expected the plain text report on stdout:\n%s", out)
		}

		data, err := os.ReadFile(csvPath)
		if err != nil {
			t.Fatalf("failed to read csv: %v", err)
		}
		lines := strings.Split(strings.TrimSuffix(string(data), "\r\n"), "\r\n")
		if lines[0] != strings.Join(report.CSVHeader, ",") {
			t.Errorf("unexpected header %q", lines[0])
		}
		if len(lines) != 1+2*3 {
			t.Errorf("expected 6 data rows, got %d", len(lines)-1)
		}
	})

	t.Run("same seed reproduces the table", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cfgPath := smallConfig(t, dir)
		first := filepath.Join(dir, "a.csv")
		second := filepath.Join(dir, "b.csv")

		for _, path := range []string{first, second} {
			if _, err := runRoot(t, "sweep", "-c", cfgPath, "--csv", path, "--source", "chacha8"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		a, _ := os.ReadFile(first)
		b, _ := os.ReadFile(second)
		if string(a) != string(b) {
			t.Error("expected identical tables")
		}
	})

	t.Run("markdown report goes to the output file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		reportPath := filepath.Join(dir, "report.md")
		out, err := runRoot(t, "sweep", "-c", smallConfig(t, dir), "-m", "-o", reportPath, "--replicates", "3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Wrote "+reportPath) {
			t.Errorf("expected 'Wrote %s', got %q", reportPath, out)
		}
		data, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.HasPrefix(string(data), "# ") {
			t.Errorf("expected a Markdown heading, got %q", string(data[:min(len(data), 40)]))
		}
	})

	t.Run("progress bar does not break the sweep", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if _, err := runRoot(t, "sweep", "-c", smallConfig(t, dir), "--progress"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("invalid grid is a configuration error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := runRoot(t, "sweep", "-c", smallConfig(t, dir), "--pmin", "9", "--pmax", "3")
		if !errors.Is(err, config.ErrInvalidPowerRange) {
			t.Errorf("expected ErrInvalidPowerRange, got %v", err)
		}
	})

	t.Run("missing explicit config file is an error", func(t *testing.T) {
		t.Parallel()

		_, err := runRoot(t, "sweep", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("unsupported plot extension is rejected", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := runRoot(t, "sweep", "-c", smallConfig(t, dir), "--plot", filepath.Join(dir, "plot.bmp"))
		if !errors.Is(err, report.ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("unsupported plot extension fails before any file is written", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		reportFile := filepath.Join(dir, "r.txt")
		csvFile := filepath.Join(dir, "table.csv")
		_, err := runRoot(t, "sweep", "-c", smallConfig(t, dir),
			"--plot", filepath.Join(dir, "x.gif"), "--csv", csvFile, "-o", reportFile)
		if !errors.Is(err, config.ErrUnsupportedPlotFormat) {
			t.Fatalf("expected ErrUnsupportedPlotFormat, got %v", err)
		}
		for _, path := range []string{reportFile, csvFile} {
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Errorf("expected %s not to be written, stat error: %v", path, err)
			}
		}
	})

	t.Run("plot size flags are applied", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		small := filepath.Join(dir, "small.png")
		large := filepath.Join(dir, "large.png")
		if _, err := runRoot(t, "sweep", "-c", smallConfig(t, dir), "--plot", small, "--plot-dpi", "40"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := runRoot(t, "sweep", "-c", smallConfig(t, dir), "--plot", large, "--plot-dpi", "200"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		smallInfo, err := os.Stat(small)
		if err != nil {
			t.Fatalf("expected small plot: %v", err)
		}
		largeInfo, err := os.Stat(large)
		if err != nil {
			t.Fatalf("expected large plot: %v", err)
		}
		if smallInfo.Size() >= largeInfo.Size() {
			t.Errorf("expected the 40 dpi plot to be smaller, got %d >= %d bytes", smallInfo.Size(), largeInfo.Size())
		}
	})

	t.Run("non-positive plot size is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := runRoot(t, "sweep", "-c", smallConfig(t, t.TempDir()), "--plot-width", "0")
		if !errors.Is(err, config.ErrInvalidPlotSize) {
			t.Errorf("expected ErrInvalidPlotSize, got %v", err)
		}
	})
}

// TestBuildSweepConfig tests that flags override the configuration file.
func TestBuildSweepConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cmd := NewSweepCmd()
	if err := cmd.ParseFlags([]string{"-c", smallConfig(t, dir), "--pmax", "8", "--dims", "4", "--save"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := buildSweepConfig(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MinPower != 4 {
		t.Errorf("expected pmin from file, got %d", cfg.MinPower)
	}
	if cfg.MaxPower != 8 {
		t.Errorf("expected pmax from flag, got %d", cfg.MaxPower)
	}
	if len(cfg.Dims) != 1 || cfg.Dims[0] != 4 {
		t.Errorf("expected dims from flag, got %v", cfg.Dims)
	}
	if cfg.Seed != 11 {
		t.Errorf("expected seed from file, got %d", cfg.Seed)
	}
	if cfg.CSVFile != "" {
		t.Errorf("expected csv disabled by file, got %q", cfg.CSVFile)
	}
	if !cfg.SaveToDB {
		t.Error("expected save from flag")
	}
}
