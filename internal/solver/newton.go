// Package solver recovers implied volatility from observed option prices by
// Newton-Raphson iteration over the closed-form pricing formulas.
//
// Two solvers are provided:
//
//   - ImpliedVol runs a fixed number of Newton steps with no convergence
//     check and no guards, matching the original calibration scripts
//     step for step. Degenerate inputs produce NaN/Inf, never an error.
//   - SolveImpliedVol is the guarded production variant: tolerance-based
//     termination, a vega floor, and clamping of the volatility iterate,
//     with an error when convergence fails.
package solver

import (
	"fmt"
	"math"

	"github.com/contactkeval/vol-calibrate/internal/pricing"
)

const (
	// DefaultIterations is the fixed step budget used when callers have no
	// reason to pick their own.
	DefaultIterations = 100

	// defaultTolerance is the price residual below which the guarded solver
	// accepts the current iterate.
	defaultTolerance = 1e-6

	// minVega guards the guarded solver's Newton step against division by a
	// vanishing derivative.
	minVega = 1e-8

	// minSigma and maxSigma clamp the guarded solver's iterate to a sane
	// volatility range.
	minSigma = 1e-4
	maxSigma = 5.0
)

// ImpliedVol estimates the volatility implied by an observed call price C0
// using plain Newton-Raphson: exactly it update steps, no convergence check,
// no damping, no divergence guard.
//
// Each step evaluates the pricing formula and the legacy vega at the current
// estimate and applies
//
//	sigmaEst -= (Call(S, K, T, r, sigmaEst) - C0) / LegacyVega(S, K, T, r, sigmaEst)
//
// The returned value is whatever the final iterate is. If the vega evaluates
// to zero, or T or sigmaEst becomes degenerate, the division produces Inf or
// NaN which flows silently through the remaining iterations and is returned.
// it=0 returns sigmaEst unchanged.
//
// Because the Newton fixed point is the root of the price residual, the
// iteration still converges to the implied volatility near the money even
// though the legacy vega is not the true derivative; it approaches the root
// linearly rather than quadratically.
func ImpliedVol(
	S float64, // spot
	K float64, // strike
	T float64, // time to expiry in years
	r float64, // risk-free rate
	C0 float64, // observed call price
	sigmaEst float64, // starting volatility estimate
	it int, // fixed iteration budget
) float64 {

	for i := 0; i < it; i++ {
		sigmaEst -= (pricing.Call(S, K, T, r, sigmaEst) - C0) /
			pricing.LegacyVega(S, K, T, r, sigmaEst)
	}
	return sigmaEst
}

// SolveImpliedVol solves for the volatility that reprices a European call to
// marketPrice, using Newton-Raphson with the density-based vega.
//
// The iteration stops as soon as the price residual falls below tol. The
// volatility iterate is clamped to [minSigma, maxSigma] and the step is
// abandoned when vega falls below a small floor. sigma0 <= 0 falls back to a
// 20% starting guess; maxIter <= 0 and tol <= 0 fall back to the package
// defaults.
//
// Returns an error for a non-positive expiry or when the budget is exhausted
// without convergence (for example when marketPrice is not attainable by any
// volatility).
func SolveImpliedVol(
	S, K, T, r float64,
	marketPrice float64,
	sigma0 float64,
	maxIter int,
	tol float64,
) (float64, error) {

	if T <= 0 {
		return 0, fmt.Errorf("invalid expiry")
	}
	if maxIter <= 0 {
		maxIter = DefaultIterations
	}
	if tol <= 0 {
		tol = defaultTolerance
	}

	sigma := sigma0
	if sigma <= 0 {
		sigma = 0.20
	}

	for i := 0; i < maxIter; i++ {
		price := pricing.Call(S, K, T, r, sigma)
		diff := price - marketPrice

		if math.Abs(diff) < tol {
			return sigma, nil
		}

		vega := pricing.Vega(S, K, T, r, sigma)
		if vega < minVega {
			break
		}

		sigma -= diff / vega

		// Guardrails
		if sigma <= 0 {
			sigma = minSigma
		}
		if sigma > maxSigma {
			sigma = maxSigma
		}
	}

	return 0, fmt.Errorf("implied vol did not converge")
}
