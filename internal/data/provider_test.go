package data

import (
	"testing"
	"time"
)

func testExpiries() []time.Time {
	return []time.Time{
		time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 25, 0, 0, 0, 0, time.UTC),
	}
}

func TestMatchExpiry(t *testing.T) {
	target := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		mode DateMatchType
		want time.Time
	}{
		{MatchExact, time.Time{}},
		{MatchLower, time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)},
		{MatchHigher, time.Date(2026, 9, 25, 0, 0, 0, 0, time.UTC)},
		{MatchNearest, time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got := MatchExpiry(target, testExpiries(), tc.mode)
		if !got.Equal(tc.want) {
			t.Fatalf("mode %s: got %v want %v", tc.mode, got, tc.want)
		}
	}
}

func TestMatchExpiryExactHit(t *testing.T) {
	target := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)
	got := MatchExpiry(target, testExpiries(), MatchExact)
	if !got.Equal(target) {
		t.Fatalf("expected exact match, got %v", got)
	}
}

func TestClosest(t *testing.T) {
	strikes := []float64{90, 95, 100, 105, 110}

	if got := Closest(strikes, 101); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
	if got := Closest(strikes, 104); got != 105 {
		t.Fatalf("expected 105, got %v", got)
	}
	if got := Closest(strikes, 50); got != 90 {
		t.Fatalf("expected 90, got %v", got)
	}
	if got := Closest(strikes, 500); got != 110 {
		t.Fatalf("expected 110, got %v", got)
	}
}

func TestSyntheticProviderExpiries(t *testing.T) {
	prov := NewSyntheticProvider(42)
	from := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 60)

	expiries, err := prov.GetRelevantExpiries("SPY", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expiries) == 0 {
		t.Fatalf("expected non-empty expiries")
	}
	for _, e := range expiries {
		if e.Weekday() != time.Friday {
			t.Fatalf("expiry %v is not a Friday", e)
		}
		if e.Before(from) || e.After(to) {
			t.Fatalf("expiry %v out of range", e)
		}
	}
}

func TestSyntheticProviderQuotes(t *testing.T) {
	prov := NewSyntheticProvider(42)
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2026, 9, 25, 0, 0, 0, 0, time.UTC)

	spot, err := prov.GetSpot("SPY", asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spot <= 0 {
		t.Fatalf("expected positive spot, got %v", spot)
	}

	quotes, err := prov.GetQuotes("SPY", expiry, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) == 0 {
		t.Fatalf("expected non-empty quotes")
	}

	prevStrike := 0.0
	for _, q := range quotes {
		if q.Type != "call" {
			t.Fatalf("unexpected quote type %q", q.Type)
		}
		if !q.Expiry.Equal(expiry) {
			t.Fatalf("quote expiry %v does not match %v", q.Expiry, expiry)
		}
		if q.Strike <= prevStrike {
			t.Fatalf("strikes not strictly increasing at %v", q.Strike)
		}
		if q.Bid >= q.Ask {
			t.Fatalf("bid %v not below ask %v at strike %v", q.Bid, q.Ask, q.Strike)
		}
		if q.Spot != spot {
			t.Fatalf("quote spot %v does not match provider spot %v", q.Spot, spot)
		}
		prevStrike = q.Strike
	}
}

func TestSyntheticProviderDeterministic(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2026, 9, 25, 0, 0, 0, 0, time.UTC)

	a := NewSyntheticProvider(99)
	b := NewSyntheticProvider(99)

	qa, err := a.GetQuotes("SPY", expiry, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	qb, err := b.GetQuotes("SPY", expiry, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(qa) != len(qb) {
		t.Fatalf("quote counts differ: %d vs %d", len(qa), len(qb))
	}
	for i := range qa {
		if qa[i] != qb[i] {
			t.Fatalf("quote %d differs: %+v vs %+v", i, qa[i], qb[i])
		}
	}
}

func TestSyntheticProviderRejectsPastExpiry(t *testing.T) {
	prov := NewSyntheticProvider(42)
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	_, err := prov.GetQuotes("SPY", asOf.AddDate(0, 0, -7), asOf)
	if err == nil {
		t.Fatal("expected error for expiry before as-of date")
	}
}
