// Package pipeline runs a convergence sweep as a sequence of steps.
//
// A sweep is processed through several stages: the primary sweep over
// dimensions and sample counts, optional replicate sweeps with independent
// seeds, and least-squares convergence fits. Each stage is a Step that
// receives the current report and adds to it. Steps run strictly in order on
// the calling goroutine, so a fixed seed reproduces the whole report.
//
// The only concurrency is in ExportBatch, which writes the finished report to
// several independent output files using errgroup.
package pipeline
