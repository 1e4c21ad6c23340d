// Package pricing implements closed-form Black-Scholes-Merton formulas for
// European call options: price, vega, and a legacy vega variant kept for
// parity with historical calibration runs.
//
// Design notes:
//   - The standard normal distribution is supplied by gonum's distuv, which
//     gives IEEE-754 double precision CDF/PDF/quantile evaluations.
//   - None of the formulas validate their inputs. Degenerate parameters
//     (T <= 0, sigma <= 0, non-positive spot or strike) flow through the
//     floating-point arithmetic and surface as NaN or Inf in the result.
//     Callers that need stricter behavior guard at their own level.
package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// stdNormal is the distribution collaborator shared by every formula in this
// package: a normal with mean 0 and standard deviation 1.
var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Call calculates the price of a European call option using the
// Black-Scholes-Merton model.
//
// Parameters:
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate (annual, continuously compounded)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// Returns:
//
//	The theoretical call price. The result is NaN or Inf when T or sigma is
//	zero or negative; no error is raised for degenerate inputs.
func Call(
	S float64, // spot
	K float64, // strike
	T float64, // time to expiry in years
	r float64, // risk-free rate
	sigma float64, // volatility
) float64 {

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	d2 := (math.Log(S/K) + (r-0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))

	return S*stdNormal.CDF(d1) - K*math.Exp(-r*T)*stdNormal.CDF(d2)
}

// Vega calculates the vega of a European option under Black-Scholes-Merton.
// Vega measures the sensitivity of the option price to changes in the
// underlying asset's volatility.
//
// Parameters:
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate
//   - sigma: volatility of the underlying asset's returns
//
// Returns:
//
//	The textbook vega, S * phi(d1) * sqrt(T), where phi is the standard
//	normal density. Vega is identical for calls and puts.
func Vega(
	S float64,
	K float64,
	T float64,
	r float64,
	sigma float64,
) float64 {

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	return S * stdNormal.Prob(d1) * math.Sqrt(T)
}

// LegacyVega reproduces, term for term, the vega used by the original
// calibration scripts this tool replaced. It differs from Vega in two ways:
// only the (r + 0.5*sigma^2)*T part of d1 is divided by sigma*sqrt(T), with
// ln(S/K) added unscaled, and the result is weighted by the cumulative
// distribution Phi(d1) rather than the density phi(d1).
//
// The formula is kept unchanged so that the fixed-budget solver in
// internal/solver produces the same numbers as historical calibration runs.
// Do not use it as a price sensitivity; use Vega for that.
func LegacyVega(
	S float64,
	K float64,
	T float64,
	r float64,
	sigma float64,
) float64 {

	d1 := math.Log(S/K) + (r+0.5*sigma*sigma)*T/(sigma*math.Sqrt(T))
	return S * stdNormal.CDF(d1) * math.Sqrt(T)
}
