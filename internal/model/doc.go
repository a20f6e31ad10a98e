// Package model defines the data structures shared by the sweep pipeline,
// the report writers and the run store.
//
// This package contains the following main types:
//   - Row: one (dimension, sample count) point of a convergence sweep
//   - SweepReport: the complete result of a sweep run
//   - Fit: a log-log convergence fit for one dimension
//   - ReplicateStat: the spread of the error over repeated sweeps
//
// The types carry no behaviour beyond small accessors so that every consumer
// (CSV, plot, Markdown, database) sees the same values. They are serializable
// to JSON for report output and database storage.
package model
