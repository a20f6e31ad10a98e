// Package montecarlo estimates the volume of a d-dimensional ball with
// hit-or-miss sampling.
//
// N points are drawn uniformly from the bounding hypercube [-r, r]^d. The
// fraction p̂ that land inside the ball (boundary included) scales the cube
// volume (2r)^d to give the estimate, and the Bernoulli standard error of p̂
// scaled the same way gives the statistical uncertainty:
//
//	estimate = (2r)^d · p̂
//	sigma    = (2r)^d · sqrt(p̂(1-p̂)/N)
//
// The caller always supplies the random source. Two estimates made with
// sources of the same kind and seed are bit-identical.
//
//	src, _ := rng.New(rng.KindPCG, 42)
//	res, err := montecarlo.Estimate(src, 3, 1<<16, 1.0)
package montecarlo
