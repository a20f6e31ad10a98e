// Package log provides logging helpers built on top of the standard slog
// package.
//
// This package extends slog to provide:
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//   - Safe handling of floating point attributes
//
// # Numeric attributes
//
// Estimates, uncertainties and fitted slopes are logged as float64
// attributes. slog's JSON handler fails on NaN and ±Inf, which a degenerate
// fit or an overflowing hypercube volume can produce. The NumericHandler
// rewrites such values to the strings "NaN", "+Inf" and "-Inf" before they
// reach the underlying handler, and can round finite values to a fixed
// number of significant digits to keep debug output readable.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//	logger.Debug("estimate", "d", 3, "volume", 4.1887902047863905)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
