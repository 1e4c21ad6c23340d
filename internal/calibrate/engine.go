// Package calibrate runs implied-volatility calibration over an option
// chain: it pulls quotes from a data Provider, filters them with a
// configurable expression, solves each quote's implied volatility, and
// aggregates the resulting smile.
package calibrate

import (
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/contactkeval/vol-calibrate/internal/data"
	"github.com/contactkeval/vol-calibrate/internal/logger"
	"github.com/contactkeval/vol-calibrate/internal/solver"
)

const (
	SolverFixed   = "fixed"   // fixed-budget Newton, legacy vega, no guards
	SolverGuarded = "guarded" // tolerance-based Newton with guardrails
)

type Engine struct {
	cfg  *Config
	prov data.Provider
}

// Config struct
type Config struct {
	Underlying string  `json:"underlying"`            // e.g. "SPY"
	AsOf       string  `json:"as_of,omitempty"`       // calibration date YYYY-MM-DD, default today
	Rate       float64 `json:"rate"`                  // risk-free rate used in repricing
	TargetDTE  int     `json:"target_dte,omitempty"`  // target days to expiry, nearest listed expiry wins
	Filter     string  `json:"filter,omitempty"`      // quote filter expression, empty = keep all
	Solver     string  `json:"solver,omitempty"`      // "fixed" or "guarded"
	Iterations int     `json:"iterations,omitempty"`  // solver iteration budget
	Tolerance  float64 `json:"tolerance,omitempty"`   // guarded solver price tolerance
	InitialVol float64 `json:"initial_vol,omitempty"` // starting volatility guess
	ReportDir  string  `json:"report_dir,omitempty"`  // report directory
	Seed       int64   `json:"seed,omitempty"`        // random seed for synthetic chains
	Verbosity  int     `json:"verbosity,omitempty"`   // 0=errors,1=info,2=debug,3=trace
}

const (
	VerbosityError = iota // 0
	VerbosityInfo         // 1
	VerbosityDebug        // 2
	VerbosityTrace        // 3
)

// SmilePoint is one calibrated strike on the smile.
type SmilePoint struct {
	Expiry     time.Time `json:"expiry"`
	Strike     float64   `json:"strike"`
	Moneyness  float64   `json:"moneyness"`
	Mid        float64   `json:"mid"`
	ImpliedVol float64   `json:"implied_vol"`
}

// Summary aggregates the solved smile.
type Summary struct {
	Solved    int     `json:"solved"`
	Skipped   int     `json:"skipped"`
	MeanVol   float64 `json:"mean_vol"`
	StdDevVol float64 `json:"std_dev_vol"`
	MinVol    float64 `json:"min_vol"`
	MaxVol    float64 `json:"max_vol"`
}

// Result is the output of one calibration run.
type Result struct {
	Underlying string       `json:"underlying"`
	AsOf       time.Time    `json:"as_of"`
	Spot       float64      `json:"spot"`
	Expiry     time.Time    `json:"expiry"`
	Points     []SmilePoint `json:"points"`
	Summary    Summary      `json:"summary"`
}

func NewEngine(cfg *Config, prov data.Provider) *Engine {
	return &Engine{cfg: cfg, prov: prov}
}

// Run executes one calibration
func (e *Engine) Run() (*Result, error) {
	cfg := e.cfg
	// fill defaults
	if cfg.ReportDir == "" {
		cfg.ReportDir = "./out"
	}
	if cfg.TargetDTE <= 0 {
		cfg.TargetDTE = 30
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = solver.DefaultIterations
	}
	if cfg.InitialVol <= 0 {
		cfg.InitialVol = 0.20
	}
	if cfg.Solver == "" {
		cfg.Solver = SolverGuarded
	}
	if cfg.Verbosity < VerbosityError || cfg.Verbosity > VerbosityTrace {
		cfg.Verbosity = VerbosityInfo
	}
	logger.SetVerbosity(cfg.Verbosity)

	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	if cfg.AsOf != "" {
		var err error
		asOf, err = time.Parse("2006-01-02", cfg.AsOf)
		if err != nil {
			return nil, fmt.Errorf("invalid as_of date %q: %w", cfg.AsOf, err)
		}
	}

	filter, err := NewQuoteFilter(cfg.Filter)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	// resolve the expiry closest to the DTE target
	searchTo := asOf.AddDate(0, 0, cfg.TargetDTE*2+30)
	expiryList, err := e.prov.GetRelevantExpiries(cfg.Underlying, asOf, searchTo)
	if err != nil {
		return nil, fmt.Errorf("get relevant expiries: %w", err)
	}
	target := asOf.AddDate(0, 0, cfg.TargetDTE)
	expiry := data.MatchExpiry(target, expiryList, data.MatchNearest)
	if expiry.IsZero() {
		return nil, fmt.Errorf("no expiry near %d DTE for %s", cfg.TargetDTE, cfg.Underlying)
	}
	logger.Infof("calibrating %s expiry %s (target %d DTE)",
		cfg.Underlying, expiry.Format("2006-01-02"), cfg.TargetDTE)

	spot, err := e.prov.GetSpot(cfg.Underlying, asOf)
	if err != nil {
		return nil, fmt.Errorf("get spot: %w", err)
	}
	logger.Infof("spot = %.2f", spot)

	quotes, err := e.prov.GetQuotes(cfg.Underlying, expiry, asOf)
	if err != nil {
		return nil, fmt.Errorf("get quotes: %w", err)
	}
	logger.Infof("%d quotes on the chain", len(quotes))

	res := &Result{
		Underlying: cfg.Underlying,
		AsOf:       asOf,
		Spot:       spot,
		Expiry:     expiry,
	}

	var vols []float64
	skipped := 0
	for _, q := range quotes {
		// the pricing formulas cover European calls only
		if q.Type != "call" {
			skipped++
			continue
		}

		keep, err := filter.Match(q, asOf)
		if err != nil {
			return nil, fmt.Errorf("filter error on strike %.2f: %w", q.Strike, err)
		}
		if !keep {
			logger.Tracef("filtered out strike %.2f", q.Strike)
			skipped++
			continue
		}

		iv, err := e.solveQuote(q, asOf)
		if err != nil || !isFiniteVol(iv) {
			logger.Debugf("skipping strike %.2f: solve failed (iv=%v err=%v)", q.Strike, iv, err)
			skipped++
			continue
		}

		res.Points = append(res.Points, SmilePoint{
			Expiry:     q.Expiry,
			Strike:     q.Strike,
			Moneyness:  q.Moneyness(),
			Mid:        q.Mid(),
			ImpliedVol: iv,
		})
		vols = append(vols, iv)
		logger.Tracef("strike %.2f mid %.4f iv %.4f", q.Strike, q.Mid(), iv)
	}

	res.Summary = summarize(vols, skipped)
	logger.Infof("solved %d strikes, skipped %d, mean vol %.4f",
		res.Summary.Solved, res.Summary.Skipped, res.Summary.MeanVol)
	return res, nil
}

// solveQuote runs the configured solver on one quote.
func (e *Engine) solveQuote(q data.Quote, asOf time.Time) (float64, error) {
	cfg := e.cfg
	tYears := q.YearsToExpiry(asOf)

	if cfg.Solver == SolverFixed {
		iv := solver.ImpliedVol(q.Spot, q.Strike, tYears, cfg.Rate, q.Mid(), cfg.InitialVol, cfg.Iterations)
		return iv, nil
	}
	return solver.SolveImpliedVol(q.Spot, q.Strike, tYears, cfg.Rate, q.Mid(), cfg.InitialVol, cfg.Iterations, cfg.Tolerance)
}

func summarize(vols []float64, skipped int) Summary {
	s := Summary{Solved: len(vols), Skipped: skipped}
	if len(vols) == 0 {
		return s
	}

	// montanaflynn errors only on empty input, which is handled above
	s.MeanVol, _ = stats.Mean(vols)
	s.StdDevVol, _ = stats.StandardDeviation(vols)
	s.MinVol, _ = stats.Min(vols)
	s.MaxVol, _ = stats.Max(vols)
	return s
}

func isFiniteVol(iv float64) bool {
	return !math.IsNaN(iv) && !math.IsInf(iv, 0) && iv > 0
}
