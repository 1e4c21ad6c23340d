package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
)

// localCSVProvider implements Provider reading chains from local CSV files,
// one file per underlying: <dir>/<UNDERLYING>.csv.
type localCSVProvider struct {
	dir       string
	secondary Provider
}

// csvQuoteRow is the on-disk row layout. Dates are ISO "2006-01-02".
type csvQuoteRow struct {
	Underlying string  `csv:"underlying"`
	Type       string  `csv:"type"`
	Expiry     string  `csv:"expiry"`
	Strike     float64 `csv:"strike"`
	Bid        float64 `csv:"bid"`
	Ask        float64 `csv:"ask"`
	Spot       float64 `csv:"spot"`
}

// NewLocalCSVProvider convenience constructor.
func NewLocalCSVProvider(dir string, secondary Provider) *localCSVProvider {
	return &localCSVProvider{dir: dir, secondary: secondary}
}

func (localCSVProv *localCSVProvider) Secondary() Provider {
	return localCSVProv.secondary
}

func (localCSVProv *localCSVProvider) GetSpot(underlying string, asOf time.Time) (float64, error) {
	quotes, err := localCSVProv.load(underlying)
	if err != nil || len(quotes) == 0 {
		if localCSVProv.secondary != nil {
			return localCSVProv.secondary.GetSpot(underlying, asOf)
		}
		return 0, fmt.Errorf("no local chain for %s: %w", underlying, err)
	}
	return quotes[0].Spot, nil
}

func (localCSVProv *localCSVProvider) GetQuotes(underlying string, expiry time.Time, asOf time.Time) ([]Quote, error) {
	quotes, err := localCSVProv.load(underlying)
	if err != nil {
		if localCSVProv.secondary != nil {
			return localCSVProv.secondary.GetQuotes(underlying, expiry, asOf)
		}
		return nil, err
	}

	var out []Quote
	for _, q := range quotes {
		if expiry.IsZero() || q.Expiry.Equal(expiry) {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no quotes for %s expiring %s", underlying, expiry.Format("2006-01-02"))
	}
	return out, nil
}

func (localCSVProv *localCSVProvider) GetRelevantExpiries(underlying string, fromDate, toDate time.Time) ([]time.Time, error) {
	quotes, err := localCSVProv.load(underlying)
	if err != nil {
		if localCSVProv.secondary != nil {
			return localCSVProv.secondary.GetRelevantExpiries(underlying, fromDate, toDate)
		}
		return nil, err
	}

	seen := map[time.Time]bool{}
	var out []time.Time
	for _, q := range quotes {
		if q.Expiry.Before(fromDate) || q.Expiry.After(toDate) || seen[q.Expiry] {
			continue
		}
		seen[q.Expiry] = true
		out = append(out, q.Expiry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// load reads and decodes the whole chain file for an underlying.
func (localCSVProv *localCSVProvider) load(underlying string) ([]Quote, error) {
	path := filepath.Join(localCSVProv.dir, underlying+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chain file: %w", err)
	}
	defer f.Close()

	var rows []csvQuoteRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("decode chain file %s: %w", path, err)
	}

	out := make([]Quote, 0, len(rows))
	for _, row := range rows {
		expiry, err := time.Parse("2006-01-02", row.Expiry)
		if err != nil {
			return nil, fmt.Errorf("bad expiry %q in %s: %w", row.Expiry, path, err)
		}
		out = append(out, Quote{
			Underlying: row.Underlying,
			Type:       row.Type,
			Expiry:     expiry,
			Strike:     row.Strike,
			Bid:        row.Bid,
			Ask:        row.Ask,
			Spot:       row.Spot,
		})
	}
	return out, nil
}

// SaveQuotesCSV writes a chain to <dir>/<UNDERLYING>.csv in the layout
// localCSVProvider reads. Useful for capturing a synthetic or fetched chain
// for later replay.
func SaveQuotesCSV(dir, underlying string, quotes []Quote) error {
	f, err := os.Create(filepath.Join(dir, underlying+".csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	rows := make([]csvQuoteRow, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, csvQuoteRow{
			Underlying: q.Underlying,
			Type:       q.Type,
			Expiry:     q.Expiry.Format("2006-01-02"),
			Strike:     q.Strike,
			Bid:        q.Bid,
			Ask:        q.Ask,
			Spot:       q.Spot,
		})
	}
	return gocsv.MarshalFile(&rows, f)
}
