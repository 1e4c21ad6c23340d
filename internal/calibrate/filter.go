package calibrate

import (
	"errors"
	"fmt"
	"time"

	"github.com/Knetic/govaluate"

	"github.com/contactkeval/vol-calibrate/internal/data"
)

// ErrFilterNotBoolean is returned when a filter expression evaluates to
// something other than true/false.
var ErrFilterNotBoolean = errors.New("filter expression must evaluate to a boolean")

// QuoteFilter decides which chain quotes enter the calibration, driven by a
// user-supplied expression over per-quote variables.
//
// Available variables:
//   - strike: strike price
//   - spot: underlying price
//   - mid: bid/ask midpoint
//   - moneyness: spot / strike
//   - dte: calendar days to expiry
//   - type: "call" or "put"
//
// Example:
//
//	moneyness >= 0.9 && moneyness <= 1.1 && dte >= 7
type QuoteFilter struct {
	expr *govaluate.EvaluableExpression
}

// NewQuoteFilter compiles a filter expression. An empty expression yields a
// filter that keeps every quote.
func NewQuoteFilter(expr string) (*QuoteFilter, error) {
	if expr == "" {
		return &QuoteFilter{}, nil
	}

	compiled, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expr, err)
	}
	return &QuoteFilter{expr: compiled}, nil
}

// Match evaluates the filter against one quote.
func (f *QuoteFilter) Match(q data.Quote, asOf time.Time) (bool, error) {
	if f.expr == nil {
		return true, nil
	}

	params := map[string]interface{}{
		"strike":    q.Strike,
		"spot":      q.Spot,
		"mid":       q.Mid(),
		"moneyness": q.Moneyness(),
		"dte":       q.Expiry.Sub(asOf).Hours() / 24,
		"type":      q.Type,
	}

	result, err := f.expr.Evaluate(params)
	if err != nil {
		return false, err
	}

	b, ok := result.(bool)
	if !ok {
		return false, ErrFilterNotBoolean
	}
	return b, nil
}
