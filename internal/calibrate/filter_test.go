package calibrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/vol-calibrate/internal/data"
)

func testQuote(strike float64) data.Quote {
	return data.Quote{
		Underlying: "SPY",
		Type:       "call",
		Expiry:     time.Date(2026, 9, 25, 0, 0, 0, 0, time.UTC),
		Strike:     strike,
		Bid:        2.4,
		Ask:        2.6,
		Spot:       100,
	}
}

func TestQuoteFilterEmptyKeepsAll(t *testing.T) {
	f, err := NewQuoteFilter("")
	require.NoError(t, err)

	keep, err := f.Match(testQuote(250), time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, keep)
}

func TestQuoteFilterMoneynessWindow(t *testing.T) {
	f, err := NewQuoteFilter("moneyness >= 0.9 && moneyness <= 1.1")
	require.NoError(t, err)

	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	keep, err := f.Match(testQuote(100), asOf) // moneyness 1.0
	require.NoError(t, err)
	assert.True(t, keep)

	keep, err = f.Match(testQuote(150), asOf) // moneyness 0.67
	require.NoError(t, err)
	assert.False(t, keep)
}

func TestQuoteFilterDTEAndType(t *testing.T) {
	f, err := NewQuoteFilter("dte >= 7 && type == 'call'")
	require.NoError(t, err)

	keep, err := f.Match(testQuote(100), time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)) // 28 dte
	require.NoError(t, err)
	assert.True(t, keep)

	keep, err = f.Match(testQuote(100), time.Date(2026, 9, 24, 0, 0, 0, 0, time.UTC)) // 1 dte
	require.NoError(t, err)
	assert.False(t, keep)
}

func TestQuoteFilterInvalidExpression(t *testing.T) {
	_, err := NewQuoteFilter("moneyness >= &&")
	assert.Error(t, err)
}

func TestQuoteFilterNonBooleanExpression(t *testing.T) {
	f, err := NewQuoteFilter("strike + 1")
	require.NoError(t, err)

	_, err = f.Match(testQuote(100), time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrFilterNotBoolean)
}
