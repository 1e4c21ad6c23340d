package data

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/contactkeval/vol-calibrate/internal/pricing"
)

// synthChainProvider implements Provider generating synthetic chains.
//
// Quotes are priced with the Black-Scholes call formula under a smile that
// is linear plus quadratic in log-moneyness, so calibration runs against it
// have a known answer. Bid/ask spreads are jittered but symmetric around
// the model price, which keeps the midpoint on the smile.
type synthChainProvider struct {
	secondary Provider
	rng       *rand.Rand

	// smile parameters: sigma(k) = base + skew*ln(K/S) + curve*ln(K/S)^2
	baseVol float64
	skew    float64
	curve   float64

	rate  float64
	spots map[string]float64
}

// NewSyntheticProvider constructs a seeded synthetic chain provider.
// seed=0 derives a seed from the clock.
func NewSyntheticProvider(seed int64) *synthChainProvider {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &synthChainProvider{
		rng:     rand.New(rand.NewSource(seed)),
		baseVol: 0.20,
		skew:    -0.15,
		curve:   0.40,
		rate:    0.05,
		spots:   map[string]float64{},
	}
}

func (synthChainProv *synthChainProvider) Secondary() Provider {
	return synthChainProv.secondary
}

// SmileVol returns the model volatility for a strike, the value a correct
// calibration of a synthetic chain should recover at that strike.
func (synthChainProv *synthChainProvider) SmileVol(spot, strike float64) float64 {
	lm := math.Log(strike / spot)
	return math.Max(0.05, synthChainProv.baseVol+synthChainProv.skew*lm+synthChainProv.curve*lm*lm)
}

func (synthChainProv *synthChainProvider) GetSpot(underlying string, asOf time.Time) (float64, error) {
	if s, ok := synthChainProv.spots[underlying]; ok {
		return s, nil
	}
	s := 80 + synthChainProv.rng.Float64()*120
	synthChainProv.spots[underlying] = s
	return s, nil
}

func (synthChainProv *synthChainProvider) GetQuotes(underlying string, expiry time.Time, asOf time.Time) ([]Quote, error) {
	if !expiry.After(asOf) {
		return nil, fmt.Errorf("expiry %s is not after as-of date %s",
			expiry.Format("2006-01-02"), asOf.Format("2006-01-02"))
	}

	spot, err := synthChainProv.GetSpot(underlying, asOf)
	if err != nil {
		return nil, err
	}

	tYears := expiry.Sub(asOf).Hours() / 24 / 365

	// strikes from 70% to 130% of spot on a fixed grid
	interval := strikeInterval(spot)
	lo := math.Ceil(spot * 0.7 / interval)
	hi := math.Floor(spot * 1.3 / interval)

	var out []Quote
	for i := lo; i <= hi; i++ {
		strike := i * interval
		sigma := synthChainProv.SmileVol(spot, strike)
		price := pricing.Call(spot, strike, tYears, synthChainProv.rate, sigma)

		// symmetric jittered spread around the model price
		half := 0.01 + 0.01*price*math.Abs(synthChainProv.rng.NormFloat64())
		out = append(out, Quote{
			Underlying: underlying,
			Type:       "call",
			Expiry:     expiry,
			Strike:     strike,
			Bid:        price - half,
			Ask:        price + half,
			Spot:       spot,
		})
	}
	return out, nil
}

// GetRelevantExpiries lists weekly Friday expiries inside the range.
func (synthChainProv *synthChainProvider) GetRelevantExpiries(underlying string, fromDate, toDate time.Time) ([]time.Time, error) {
	var out []time.Time
	cur := fromDate
	for !cur.After(toDate) {
		if cur.Weekday() == time.Friday {
			out = append(out, cur)
		}
		cur = cur.AddDate(0, 0, 1)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no expiries between %s and %s",
			fromDate.Format("2006-01-02"), toDate.Format("2006-01-02"))
	}
	return out, nil
}

// strikeInterval picks a listing-style strike spacing for a spot level.
func strikeInterval(spot float64) float64 {
	switch {
	case spot < 25:
		return 0.5
	case spot < 100:
		return 1
	case spot < 200:
		return 2.5
	default:
		return 5
	}
}
