package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and ValidateGrid and are
// matched with errors.Is. Validate wraps them with the offending value.
var (
	// ErrNoDimensions is returned when the sweep has no dimensions.
	ErrNoDimensions = errors.New("no dimensions specified: provide at least one with --dims")

	// ErrInvalidDimension is returned when a dimension is less than 1.
	ErrInvalidDimension = errors.New("invalid dimension: must be >= 1")

	// ErrInvalidPowerRange is returned when pmin is negative or greater than pmax.
	ErrInvalidPowerRange = errors.New("invalid power range: need 0 <= pmin <= pmax")

	// ErrPowerTooLarge is returned when pmax exceeds MaxPower.
	// 2^40 samples per point is already far beyond a practical run time.
	ErrPowerTooLarge = errors.New("invalid power range: pmax is too large")

	// ErrInvalidRadius is returned when the radius is not a finite positive number.
	ErrInvalidRadius = errors.New("invalid radius: must be a finite value > 0")

	// ErrInvalidReplicates is returned when the replicate count is less than 1.
	ErrInvalidReplicates = errors.New("invalid replicates: must be >= 1")

	// ErrUnknownSource is returned when the random source kind is not supported.
	ErrUnknownSource = errors.New("unknown random source")

	// ErrUnsupportedPlotFormat is returned when the plot file extension does
	// not name an image format the plot writer can produce.
	ErrUnsupportedPlotFormat = errors.New("unsupported plot format")

	// ErrInvalidPlotSize is returned when the plot size or resolution is not positive.
	ErrInvalidPlotSize = errors.New("invalid plot size: width, height and dpi must be > 0")

	// ErrDuplicateOutput is returned when two output files share a path.
	// The files are written concurrently, so they must be distinct.
	ErrDuplicateOutput = errors.New("duplicate output path")
)
