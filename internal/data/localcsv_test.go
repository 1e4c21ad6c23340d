package data

import (
	"testing"
	"time"
)

func sampleChain() []Quote {
	sep := time.Date(2026, 9, 25, 0, 0, 0, 0, time.UTC)
	oct := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	return []Quote{
		{Underlying: "SPY", Type: "call", Expiry: sep, Strike: 95, Bid: 7.1, Ask: 7.5, Spot: 100},
		{Underlying: "SPY", Type: "call", Expiry: sep, Strike: 100, Bid: 3.75, Ask: 4.25, Spot: 100},
		{Underlying: "SPY", Type: "call", Expiry: oct, Strike: 100, Bid: 5.0, Ask: 5.4, Spot: 100},
	}
}

func TestLocalCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	if err := SaveQuotesCSV(dir, "SPY", sampleChain()); err != nil {
		t.Fatalf("save chain: %v", err)
	}

	prov := NewLocalCSVProvider(dir, nil)
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	sep := time.Date(2026, 9, 25, 0, 0, 0, 0, time.UTC)

	spot, err := prov.GetSpot("SPY", asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spot != 100 {
		t.Fatalf("expected spot 100, got %v", spot)
	}

	quotes, err := prov.GetQuotes("SPY", sep, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 September quotes, got %d", len(quotes))
	}
	for _, q := range quotes {
		if !q.Expiry.Equal(sep) {
			t.Fatalf("quote expiry %v is not %v", q.Expiry, sep)
		}
	}
	if quotes[1].Mid() != 4.0 {
		t.Fatalf("expected ATM mid 4.0, got %v", quotes[1].Mid())
	}

	expiries, err := prov.GetRelevantExpiries("SPY", asOf, asOf.AddDate(0, 0, 90))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expiries) != 2 {
		t.Fatalf("expected 2 expiries, got %d", len(expiries))
	}
	if !expiries[0].Before(expiries[1]) {
		t.Fatalf("expiries not sorted: %v", expiries)
	}
}

func TestLocalCSVMissingFile(t *testing.T) {
	prov := NewLocalCSVProvider(t.TempDir(), nil)

	_, err := prov.GetQuotes("SPY", time.Time{}, time.Now())
	if err == nil {
		t.Fatal("expected error for missing chain file")
	}
}

func TestLocalCSVSecondaryFallback(t *testing.T) {
	// missing local file delegates to the synthetic secondary
	prov := NewLocalCSVProvider(t.TempDir(), NewSyntheticProvider(42))
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	spot, err := prov.GetSpot("SPY", asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spot <= 0 {
		t.Fatalf("expected positive spot from secondary, got %v", spot)
	}
}
