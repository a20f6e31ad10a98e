// Package main provides the entry point for the ndsphere CLI.
//
// ndsphere estimates the volume of a d-dimensional ball by hit-or-miss
// Monte Carlo sampling and studies how the estimate converges.
//
// Usage:
//
//	ndsphere <dimension> <samples> <radius>
//	ndsphere sweep --dims 3,5,10 --pmin 6 --pmax 18
//	ndsphere history --list
//
// See --help for all available options.
package main

// main is the entry point for ndsphere.
func main() {
	Execute()
}
