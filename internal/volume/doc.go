// Package volume provides the closed-form volume of a d-dimensional
// Euclidean ball and of its bounding hypercube.
//
// The analytic value serves two roles: it is the ground truth against which
// Monte Carlo estimates are scored, and it is a plain mathematical utility
// for callers that only need the exact number.
//
//	v, err := volume.Ball(3, 1.0) // 4/3·π
//
// Inputs are validated at the boundary. A non-positive dimension or radius is
// reported as ErrInvalidArgument rather than being passed on to the Gamma
// function, where it would silently produce a meaningless value.
package volume
