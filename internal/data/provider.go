// Package data provides option chain data providers for calibration.
//
// A Provider supplies the spot price, the quotes of a single expiry's chain,
// and the set of listed expiries. Implementations form a fallback chain via
// Secondary(): a provider that cannot serve a request delegates to the next
// one in line.
package data

import (
	"math"
	"os"
	"sort"
	"time"
)

type DateMatchType string

const (
	MatchExact   DateMatchType = "exact"   // must match exactly
	MatchHigher  DateMatchType = "higher"  // next available date after target
	MatchLower   DateMatchType = "lower"   // last available date before target
	MatchNearest DateMatchType = "nearest" // closest available date (default)
)

// Provider supplies market data for calibration.
type Provider interface {
	Secondary() Provider
	GetSpot(underlying string, asOf time.Time) (float64, error)
	GetQuotes(underlying string, expiry time.Time, asOf time.Time) ([]Quote, error)
	GetRelevantExpiries(underlying string, fromDate, toDate time.Time) ([]time.Time, error)
}

// Quote is a single observed option price on a chain.
type Quote struct {
	Underlying string    `json:"underlying"`
	Type       string    `json:"type"` // "call" or "put"
	Expiry     time.Time `json:"expiry"`
	Strike     float64   `json:"strike"`
	Bid        float64   `json:"bid"`
	Ask        float64   `json:"ask"`
	Spot       float64   `json:"spot"` // underlying price when the quote was observed
}

// Mid returns the bid/ask midpoint, the price the solver calibrates to.
func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// Moneyness returns spot over strike.
func (q Quote) Moneyness() float64 {
	return q.Spot / q.Strike
}

// YearsToExpiry returns the time to expiry in years as of the given date.
func (q Quote) YearsToExpiry(asOf time.Time) float64 {
	return q.Expiry.Sub(asOf).Hours() / 24 / 365
}

// GetChainAPIProvider returns the HTTP-backed provider configured from the
// environment.
func GetChainAPIProvider() Provider {
	return NewChainAPIProvider(os.Getenv("CHAIN_API_KEY"))
}

// --------------------------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------------------------

// MatchExpiry selects an expiry from the available list relative to the
// target date d, according to the supplied match mode.
func MatchExpiry(d time.Time, expiries []time.Time, mode DateMatchType) time.Time {

	// Search useful info
	var (
		exact  time.Time
		lower  time.Time
		higher time.Time
	)

	// default to MatchNearest
	switch mode {
	case MatchExact, MatchHigher, MatchLower, MatchNearest:
		// ok
	default:
		mode = MatchNearest
	}

	sort.Slice(expiries, func(i, j int) bool { return expiries[i].Before(expiries[j]) })

	for _, dt := range expiries {
		if dt.Equal(d) {
			exact = dt
		}
		if dt.Before(d) {
			lower = dt // will keep last ≤ d
		}
		if dt.After(d) && higher.IsZero() {
			higher = dt
		}
	}

	switch mode {

	case MatchExact:
		return exact // may be zero → caller skips it

	case MatchLower:
		return lower // last expiry before d

	case MatchHigher:
		return higher // first expiry after d

	case MatchNearest:
		if !exact.IsZero() {
			return exact
		}
		// choose whichever is closer
		switch {
		case !lower.IsZero() && !higher.IsZero():
			if d.Sub(lower) <= higher.Sub(d) {
				return lower
			}
			return higher
		case !lower.IsZero():
			return lower
		case !higher.IsZero():
			return higher
		}
	}

	return time.Time{} // nothing found
}

// Closest finds the closest float64 in a sorted slice to the target value using binary search (sort.Search).
func Closest(numList []float64, target float64) float64 {
	n := len(numList)
	if n == 0 {
		panic("empty list")
	}

	i := sort.Search(n, func(i int) bool {
		return numList[i] >= target
	})

	if i == 0 {
		return numList[0]
	}
	if i == n {
		return numList[n-1]
	}

	before := numList[i-1]
	after := numList[i]

	if math.Abs(before-target) < math.Abs(after-target) {
		return before
	}
	return after
}
