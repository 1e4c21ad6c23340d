package calibrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/vol-calibrate/internal/data"
)

// A synthetic chain is priced from a known smile; a guarded calibration run
// should recover that smile at every solved strike.
func TestEngineRecoverSyntheticSmile(t *testing.T) {
	prov := data.NewSyntheticProvider(7)
	cfg := &Config{
		Underlying: "SPY",
		AsOf:       "2026-08-28",
		Rate:       0.05,
		TargetDTE:  30,
		Filter:     "moneyness >= 0.92 && moneyness <= 1.08",
		Solver:     SolverGuarded,
	}

	res, err := NewEngine(cfg, prov).Run()
	require.NoError(t, err)
	require.NotEmpty(t, res.Points)

	assert.Equal(t, len(res.Points), res.Summary.Solved)
	assert.Greater(t, res.Spot, 0.0)

	for _, p := range res.Points {
		want := prov.SmileVol(res.Spot, p.Strike)
		assert.InDelta(t, want, p.ImpliedVol, 1e-3,
			"strike %.2f: iv %.5f vs smile %.5f", p.Strike, p.ImpliedVol, want)
	}

	assert.Greater(t, res.Summary.MeanVol, 0.0)
	assert.GreaterOrEqual(t, res.Summary.MaxVol, res.Summary.MinVol)
}

// The fixed-budget solver has no guards, so the engine restricts it here to
// near-the-money strikes where the legacy Newton update is stable.
func TestEngineFixedBudgetSolver(t *testing.T) {
	prov := data.NewSyntheticProvider(11)
	cfg := &Config{
		Underlying: "QQQ",
		AsOf:       "2026-08-28",
		Rate:       0.05,
		TargetDTE:  30,
		Filter:     "moneyness >= 0.97 && moneyness <= 1.03",
		Solver:     SolverFixed,
	}

	res, err := NewEngine(cfg, prov).Run()
	require.NoError(t, err)
	require.NotEmpty(t, res.Points)

	for _, p := range res.Points {
		want := prov.SmileVol(res.Spot, p.Strike)
		assert.InDelta(t, want, p.ImpliedVol, 1e-3,
			"strike %.2f: iv %.5f vs smile %.5f", p.Strike, p.ImpliedVol, want)
	}
}

func TestEngineInvalidFilter(t *testing.T) {
	cfg := &Config{
		Underlying: "SPY",
		AsOf:       "2026-08-28",
		Rate:       0.05,
		Filter:     "moneyness >= &&",
	}

	_, err := NewEngine(cfg, data.NewSyntheticProvider(1)).Run()
	assert.Error(t, err)
}

func TestEngineInvalidAsOf(t *testing.T) {
	cfg := &Config{
		Underlying: "SPY",
		AsOf:       "28/08/2026",
		Rate:       0.05,
	}

	_, err := NewEngine(cfg, data.NewSyntheticProvider(1)).Run()
	assert.Error(t, err)
}
