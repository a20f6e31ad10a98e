package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/nao1215/ndsphere/internal/config"
	"github.com/nao1215/ndsphere/internal/model"
	"github.com/nao1215/ndsphere/internal/montecarlo"
	"github.com/nao1215/ndsphere/internal/rng"
)

// ProgressFunc is called after every estimate with the number of completed
// and total estimates of the step.
type ProgressFunc func(done, total int)

// NewRow converts an estimate into a sweep row.
func NewRow(res montecarlo.Result) model.Row {
	return model.Row{
		D:               res.Dim,
		N:               res.Samples,
		SqrtN:           math.Sqrt(float64(res.Samples)),
		Estimate:        res.Volume,
		True:            res.Exact,
		FractionalError: res.RelError,
		Sigma:           res.StdErr,
		SigmaFrac:       res.RelStdErr(),
		Inside:          res.Inside,
		R:               res.Radius,
	}
}

// sweep runs one estimate per (dimension, sample count) in dimension-major
// order on a single estimator, calling emit for every row. The context is
// checked between estimates.
func sweep(ctx context.Context, est *montecarlo.Estimator, params model.Params, emit func(model.Row)) error {
	for _, d := range params.Dims {
		for _, n := range params.SampleCounts() {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := est.Estimate(d, n, params.Radius)
			if err != nil {
				return fmt.Errorf("estimate d=%d N=%d: %w", d, n, err)
			}
			emit(NewRow(res))
		}
	}
	return nil
}

// SweepStep runs the primary sweep and appends its rows to the report.
// The whole sweep draws from one source, so the report is reproducible from
// that source's seed.
type SweepStep struct {
	src      rand.Source
	progress ProgressFunc
	logger   *slog.Logger
}

// SweepStepOption configures a SweepStep.
type SweepStepOption func(*SweepStep)

// WithSweepProgress sets a progress callback.
func WithSweepProgress(fn ProgressFunc) SweepStepOption {
	return func(s *SweepStep) {
		s.progress = fn
	}
}

// WithSweepLogger sets a custom logger for the sweep step.
func WithSweepLogger(logger *slog.Logger) SweepStepOption {
	return func(s *SweepStep) {
		s.logger = logger
	}
}

// NewSweepStep creates a sweep step drawing from src.
func NewSweepStep(src rand.Source, opts ...SweepStepOption) *SweepStep {
	s := &SweepStep{
		src:    src,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *SweepStep) Name() string {
	return "sweep"
}

// Do validates the grid and runs the sweep.
func (s *SweepStep) Do(ctx context.Context, report *model.SweepReport) error {
	p := report.Params
	if err := config.ValidateGrid(p.Dims, p.MinPower, p.MaxPower, p.Radius); err != nil {
		return err
	}

	total := p.Combinations()
	done := 0
	est := montecarlo.NewEstimator(s.src)

	return sweep(ctx, est, p, func(row model.Row) {
		report.AddRow(row)
		done++
		s.logger.Debug("estimate",
			"d", row.D,
			"N", row.N,
			"estimate", row.Estimate,
			"sigma", row.Sigma,
			"fractional_error", row.FractionalError,
		)
		if s.progress != nil {
			s.progress(done, total)
		}
	})
}

// SourceFactory creates the random source for replicate i from its seed.
type SourceFactory func(seed uint64) (rand.Source, error)

// KindFactory returns a SourceFactory for the given generator kind.
func KindFactory(kind rng.Kind) SourceFactory {
	return func(seed uint64) (rand.Source, error) {
		return rng.New(kind, seed)
	}
}

// ReplicateStep repeats the sweep with independent sources and records, per
// (dimension, sample count), the mean, median and sample standard deviation
// of the fractional error. The primary sweep already in the report counts as
// replicate 0; replicates 1 … k-1 are seeded with rng.Derive(seed, i) and run
// one after another. With fewer than two replicates the step does nothing.
type ReplicateStep struct {
	factory  SourceFactory
	progress ProgressFunc
	logger   *slog.Logger
}

// ReplicateStepOption configures a ReplicateStep.
type ReplicateStepOption func(*ReplicateStep)

// WithReplicateProgress sets a progress callback.
func WithReplicateProgress(fn ProgressFunc) ReplicateStepOption {
	return func(s *ReplicateStep) {
		s.progress = fn
	}
}

// WithReplicateLogger sets a custom logger for the replicate step.
func WithReplicateLogger(logger *slog.Logger) ReplicateStepOption {
	return func(s *ReplicateStep) {
		s.logger = logger
	}
}

// NewReplicateStep creates a replicate step that builds its sources with factory.
func NewReplicateStep(factory SourceFactory, opts ...ReplicateStepOption) *ReplicateStep {
	s := &ReplicateStep{
		factory: factory,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ReplicateStep) Name() string {
	return "replicate"
}

type pointKey struct{ d, n int }

// Do runs the extra sweeps and fills report.Replicates.
func (s *ReplicateStep) Do(ctx context.Context, report *model.SweepReport) error {
	p := report.Params
	if p.Replicates < 2 {
		return nil
	}
	if len(report.Rows) == 0 {
		return ErrNoRows
	}

	order := make([]pointKey, 0, len(report.Rows))
	errs := make(map[pointKey][]float64, len(report.Rows))
	ests := make(map[pointKey][]float64, len(report.Rows))
	collect := func(row model.Row) {
		k := pointKey{row.D, row.N}
		if _, ok := errs[k]; !ok {
			order = append(order, k)
		}
		errs[k] = append(errs[k], row.FractionalError)
		ests[k] = append(ests[k], row.Estimate)
	}
	for _, row := range report.Rows {
		collect(row)
	}

	total := (p.Replicates - 1) * p.Combinations()
	done := 0
	for i := 1; i < p.Replicates; i++ {
		seed := rng.Derive(p.Seed, i)
		src, err := s.factory(seed)
		if err != nil {
			return fmt.Errorf("replicate %d: %w", i, err)
		}
		s.logger.Debug("replicate sweep", "replicate", i, "seed", seed)

		err = sweep(ctx, montecarlo.NewEstimator(src), p, func(row model.Row) {
			collect(row)
			done++
			if s.progress != nil {
				s.progress(done, total)
			}
		})
		if err != nil {
			return fmt.Errorf("replicate %d: %w", i, err)
		}
	}

	report.Replicates = make([]model.ReplicateStat, 0, len(order))
	for _, k := range order {
		st, err := summarize(k, errs[k], ests[k])
		if err != nil {
			return err
		}
		report.Replicates = append(report.Replicates, st)
	}
	return nil
}

func summarize(k pointKey, errs, ests []float64) (model.ReplicateStat, error) {
	mean, err := stats.Mean(errs)
	if err != nil {
		return model.ReplicateStat{}, fmt.Errorf("mean error d=%d N=%d: %w", k.d, k.n, err)
	}
	median, err := stats.Median(errs)
	if err != nil {
		return model.ReplicateStat{}, fmt.Errorf("median error d=%d N=%d: %w", k.d, k.n, err)
	}
	sd, err := stats.StandardDeviationSample(errs)
	if err != nil {
		return model.ReplicateStat{}, fmt.Errorf("stddev error d=%d N=%d: %w", k.d, k.n, err)
	}
	meanEst, err := stats.Mean(ests)
	if err != nil {
		return model.ReplicateStat{}, fmt.Errorf("mean estimate d=%d N=%d: %w", k.d, k.n, err)
	}
	return model.ReplicateStat{
		D:            k.d,
		N:            k.n,
		Replicates:   len(errs),
		MeanEstimate: meanEst,
		MeanError:    mean,
		MedianError:  median,
		StdDevError:  sd,
	}, nil
}

// ConvergenceStep fits log(fractional error) against log(N) for every
// dimension by ordinary least squares and grades the slope against -0.5.
// When replicate statistics exist the mean error is fitted instead of the
// single-run error. Points with zero error are skipped.
type ConvergenceStep struct {
	logger *slog.Logger
}

// NewConvergenceStep creates a convergence step.
func NewConvergenceStep(logger *slog.Logger) *ConvergenceStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConvergenceStep{logger: logger}
}

// Name returns the step name.
func (s *ConvergenceStep) Name() string {
	return "convergence"
}

// Do computes report.Fits.
func (s *ConvergenceStep) Do(ctx context.Context, report *model.SweepReport) error {
	if len(report.Rows) == 0 {
		return ErrNoRows
	}

	dims := report.Dims()
	report.Fits = make([]model.Fit, 0, len(dims))
	for _, d := range dims {
		if err := ctx.Err(); err != nil {
			return err
		}

		var xs, ys []float64
		useReplicates := false
		if reps := report.ReplicatesFor(d); len(reps) > 0 {
			useReplicates = true
			for _, r := range reps {
				xs, ys = appendLogPoint(xs, ys, r.N, r.MeanError)
			}
		} else {
			for _, row := range report.RowsFor(d) {
				xs, ys = appendLogPoint(xs, ys, row.N, row.FractionalError)
			}
		}

		fit := model.Fit{D: d, Points: len(xs), UsedReplicates: useReplicates}
		var ok bool
		fit.Slope, fit.Intercept, fit.RSquared, ok = fitLine(xs, ys)
		fit.Verdict = model.VerdictUnknown
		if ok {
			fit.Verdict = model.ClassifySlope(fit.Slope)
		}

		var sx, sy []float64
		for _, row := range report.RowsFor(d) {
			sx, sy = appendLogPoint(sx, sy, row.N, row.SigmaFrac)
		}
		fit.SigmaSlope, _, _, _ = fitLine(sx, sy)

		s.logger.Debug("convergence fit",
			"d", d,
			"slope", fit.Slope,
			"r_squared", fit.RSquared,
			"verdict", fit.Verdict.String(),
		)
		report.Fits = append(report.Fits, fit)
	}
	return nil
}

func appendLogPoint(xs, ys []float64, n int, y float64) ([]float64, []float64) {
	if n <= 0 || y <= 0 || math.IsNaN(y) || math.IsInf(y, 0) {
		return xs, ys
	}
	return append(xs, math.Log(float64(n))), append(ys, math.Log(y))
}

// fitLine returns slope, intercept and R² of the least-squares line.
// ok is false when fewer than two distinct x values are available.
// A constant y has no variance to explain and reports R² = 0.
func fitLine(xs, ys []float64) (slope, intercept, r2 float64, ok bool) {
	if len(xs) < 2 || xs[0] == xs[len(xs)-1] {
		return 0, 0, 0, false
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	r2 = stat.RSquared(xs, ys, nil, alpha, beta)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}
	return beta, alpha, r2, true
}

// DefaultPipelineConfig holds configuration for the default sweep pipeline.
type DefaultPipelineConfig struct {
	// Progress receives progress of the primary and replicate sweeps as one
	// combined count.
	Progress ProgressFunc

	// Factory creates replicate sources. Defaults to KindFactory of the
	// report's source kind.
	Factory SourceFactory

	// Logger is passed to every step.
	Logger *slog.Logger
}

// DefaultPipelineOption configures DefaultPipeline.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineProgress sets the combined progress callback.
func WithPipelineProgress(fn ProgressFunc) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Progress = fn
	}
}

// WithPipelineSourceFactory overrides how replicate sources are created.
func WithPipelineSourceFactory(f SourceFactory) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Factory = f
	}
}

// WithPipelineLogger sets the logger passed to every step.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline assembles the sweep, replicate and convergence steps.
// src drives the primary sweep; kind selects the generator for replicates.
// The progress callback sees one total covering all replicates.
func DefaultPipeline(src rand.Source, params model.Params, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Logger: p.logger,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}
	if cfg.Factory == nil {
		kind, err := rng.ParseKind(params.Source)
		if err != nil {
			kind = rng.DefaultKind
		}
		cfg.Factory = KindFactory(kind)
	}

	replicates := max(params.Replicates, 1)
	perSweep := params.Combinations()
	total := replicates * perSweep

	sweepOpts := []SweepStepOption{WithSweepLogger(cfg.Logger)}
	replicateOpts := []ReplicateStepOption{WithReplicateLogger(cfg.Logger)}
	if cfg.Progress != nil {
		progress := cfg.Progress
		sweepOpts = append(sweepOpts, WithSweepProgress(func(done, _ int) {
			progress(done, total)
		}))
		replicateOpts = append(replicateOpts, WithReplicateProgress(func(done, _ int) {
			progress(perSweep+done, total)
		}))
	}

	p.AddSteps(
		NewSweepStep(src, sweepOpts...),
		NewReplicateStep(cfg.Factory, replicateOpts...),
		NewConvergenceStep(cfg.Logger),
	)

	return p
}
