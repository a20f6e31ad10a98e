package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nao1215/ndsphere/internal/config"
	ndlog "github.com/nao1215/ndsphere/internal/log"
	"github.com/nao1215/ndsphere/internal/montecarlo"
	"github.com/nao1215/ndsphere/internal/report"
	"github.com/nao1215/ndsphere/internal/rng"
)

// logPrecision is the number of significant digits of floats in text logs.
const logPrecision = 8

// parseErrorMessage is printed when a positional argument is not a number.
const parseErrorMessage = "Error: Please provide valid integers and doubles as arguments."

// exitError ends the process with code after the command already reported
// the problem itself.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// NewRootCmd creates the root command for ndsphere.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ndsphere <dimension> <samples> <radius>",
		Short: "Monte Carlo volume of a d-dimensional ball",
		Long: `ndsphere estimates the volume of a d-dimensional ball of radius r by
drawing uniform points in the bounding hypercube [-r, r]^d and counting how
many fall inside the ball.

Called with three arguments it runs a single estimate and prints the
volume, its statistical uncertainty and the relative error against the
exact volume. Use the sweep subcommand to study convergence.

Examples:
  # Unit 3-ball with 100000 samples
  ndsphere 3 100000 1.0

  # Reproducible estimate with a fixed seed
  ndsphere --seed 7 5 1000000 1.0

  # Flags go before the arguments; a negative dimension must follow --
  ndsphere --seed 7 -- -1 100 1.0`,
		Version:       getVersion(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRootCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.Flags().Uint64("seed", 0, "Seed for a reproducible estimate (default: system entropy)")
	cmd.Flags().String("source", string(rng.DefaultKind), "Random source: "+kindNames())
	// Everything after the first positional argument is an argument, so a
	// negative sample count or radius reaches validation instead of pflag.
	cmd.Flags().SetInterspersed(false)

	cmd.AddCommand(NewSweepCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// runRootCmd runs a single estimate from the three positional arguments.
func runRootCmd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) != 3 {
		fmt.Fprintf(out, "Usage: %s <int1> <int2> <double>\n", os.Args[0])
		return &exitError{code: 1}
	}

	d, n, r, err := parseEstimateArgs(args)
	if err != nil {
		fmt.Fprintln(out, parseErrorMessage)
		return &exitError{code: 1}
	}

	logger := newLogger(cmd)
	src, err := estimateSource(cmd, logger)
	if err != nil {
		return err
	}

	res, err := montecarlo.Estimate(src, d, n, r)
	if err != nil {
		return err
	}
	logger.Debug("estimate finished", "d", d, "n", n, "inside", res.Inside, "exact", res.Exact)

	return writeEstimate(out, res)
}

// parseEstimateArgs parses <dimension> <samples> <radius>.
func parseEstimateArgs(args []string) (d, n int, r float64, err error) {
	if d, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, 0, err
	}
	if n, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, 0, err
	}
	if r, err = strconv.ParseFloat(args[2], 64); err != nil {
		return 0, 0, 0, err
	}
	return d, n, r, nil
}

// estimateSource returns a seeded source when --seed was given and an
// entropy-seeded one otherwise.
func estimateSource(cmd *cobra.Command, logger *slog.Logger) (rand.Source, error) {
	name, err := cmd.Flags().GetString("source")
	if err != nil {
		return nil, err
	}
	kind, err := rng.ParseKind(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrUnknownSource, err)
	}

	if cmd.Flags().Changed("seed") {
		seed, err := cmd.Flags().GetUint64("seed")
		if err != nil {
			return nil, err
		}
		return rng.New(kind, seed)
	}

	src, seed, err := rng.NewEntropy(kind)
	if err != nil {
		return nil, err
	}
	logger.Debug("seeded from system entropy", "source", string(kind), "seed", seed)
	return src, nil
}

// writeEstimate prints the five result lines.
func writeEstimate(w io.Writer, res montecarlo.Result) error {
	_, err := fmt.Fprintf(w, "(r): %s\n(d,N): %d %d\nvolume: %s\nstat uncertainty: %s\nrelative error: %s\n",
		report.FormatFloat(res.Radius),
		res.Dim, res.Samples,
		report.FormatFloat(res.Volume),
		report.FormatFloat(res.StdErr),
		report.FormatFloat(res.RelError),
	)
	return err
}

// newLogger builds the logger selected by the persistent flags.
func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose := getBoolFlag(cmd, "verbose")
	if getBoolFlag(cmd, "log-json") {
		return ndlog.NewJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return ndlog.NewLogger(cmd.ErrOrStderr(), verbose, ndlog.WithPrecision(logPrecision))
}

// getBoolFlag retrieves a boolean flag from the command or its parents.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

func kindNames() string {
	s := ""
	for i, k := range rng.Kinds() {
		if i > 0 {
			s += ", "
		}
		s += string(k)
	}
	return s
}
