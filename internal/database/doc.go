// Package database provides SQLite-based storage for ndsphere sweep runs.
//
// The RunDB stores:
//   - One row per sweep run with its parameters and the full report as JSON
//   - One row per (dimension, sample count) point of each run
//
// Design decision: We use SQLite (via modernc.org/sqlite) so that the run
// history is a single file under the XDG data directory and the binary stays
// CGO-free. Queries go through sqlx so that rows scan straight into structs.
package database
