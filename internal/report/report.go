// Package report writes calibration results to disk as JSON and CSV.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/contactkeval/vol-calibrate/internal/calibrate"
)

// smileRow is the CSV layout for one calibrated strike.
type smileRow struct {
	Underlying string  `csv:"underlying"`
	Expiry     string  `csv:"expiry"`
	Strike     float64 `csv:"strike"`
	Moneyness  float64 `csv:"moneyness"`
	Mid        float64 `csv:"mid"`
	ImpliedVol float64 `csv:"implied_vol"`
}

// WriteJSON writes the full result, summary included, to smile.json.
func WriteJSON(res *calibrate.Result, outdir string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "smile.json"), b, 0644)
}

// WriteCSV writes the calibrated points to smile.csv.
func WriteCSV(res *calibrate.Result, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "smile.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	rows := make([]smileRow, 0, len(res.Points))
	for _, p := range res.Points {
		rows = append(rows, smileRow{
			Underlying: res.Underlying,
			Expiry:     p.Expiry.Format("2006-01-02"),
			Strike:     p.Strike,
			Moneyness:  p.Moneyness,
			Mid:        p.Mid,
			ImpliedVol: p.ImpliedVol,
		})
	}
	return gocsv.MarshalFile(&rows, f)
}
