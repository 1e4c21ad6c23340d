// This file contains an HTTP-backed Provider that retrieves spot prices,
// option chains, and expiry lists from a JSON chain API.
//
// Design notes:
//   - Uses raw HTTP calls instead of a vendor SDK
//   - Supports pagination and rate-limiting retries
//   - Logging is intentionally verbose at Debug/Trace levels for diagnostics
package data

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/contactkeval/vol-calibrate/internal/logger"
)

// chainAPIProvider implements the Provider interface over a chain HTTP API.
type chainAPIProvider struct {
	// APIKey used for authenticating requests.
	APIKey string

	// Client is the HTTP client used to make API requests.
	Client *http.Client

	// BaseURL is the root endpoint of the chain API.
	BaseURL string

	// secondary is an optional fallback provider.
	secondary Provider
}

// chainQuote is a single quote row as returned by the chain endpoint.
type chainQuote struct {
	Underlying string  `json:"underlying"`
	Type       string  `json:"contract_type"`
	Expiry     string  `json:"expiration_date"`
	Strike     float64 `json:"strike_price"`
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
	Spot       float64 `json:"underlying_price"`
}

// chainResp models the paginated chain response.
type chainResp struct {
	Results   []chainQuote `json:"results"`
	Status    string       `json:"status"`
	RequestID string       `json:"request_id"`
	NextURL   string       `json:"next_url"`
}

// spotResp models the spot endpoint response.
type spotResp struct {
	Price float64 `json:"price"`
}

// expiriesResp models the expiries endpoint response.
type expiriesResp struct {
	Results []string `json:"results"`
}

// NewChainAPIProvider constructs an HTTP-backed chain data provider.
//
// It initializes an HTTP client with sensible defaults for timeouts,
// connection pooling, HTTP/2, and gzip decompression.
func NewChainAPIProvider(apiKey string) *chainAPIProvider {
	logger.Infof("initializing chain API provider")

	return &chainAPIProvider{
		APIKey: apiKey,
		Client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				DisableCompression:    false, // must be false to enable gzip auto-decompression
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		BaseURL: "https://api.chainfeed.io",
	}
}

// Secondary returns the configured secondary Provider, if any.
func (chainAPIProv *chainAPIProvider) Secondary() Provider {
	return chainAPIProv.secondary
}

// GetSpot retrieves the underlying price as of a date.
func (chainAPIProv *chainAPIProvider) GetSpot(underlying string, asOf time.Time) (float64, error) {
	logger.Debugf("spot request: %s as of %s", underlying, asOf.Format("2006-01-02"))

	u, err := url.Parse(chainAPIProv.BaseURL + "/v1/spot")
	if err != nil {
		return 0, err
	}
	query := u.Query()
	query.Set("underlying", underlying)
	query.Set("as_of", asOf.Format("2006-01-02"))
	query.Set("apiKey", chainAPIProv.APIKey)
	u.RawQuery = query.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := chainAPIProv.processGetRequest(req)
	if err != nil {
		if chainAPIProv.secondary != nil {
			logger.Tracef("delegating spot request to secondary provider")
			return chainAPIProv.secondary.GetSpot(underlying, asOf)
		}
		return 0, fmt.Errorf("fetch spot: %w", err)
	}
	defer resp.Body.Close()

	var sr spotResp
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return 0, fmt.Errorf("decode spot response: %w", err)
	}
	return sr.Price, nil
}

// GetQuotes retrieves the full chain for one expiry, following pagination
// until the API stops returning a next_url.
func (chainAPIProv *chainAPIProvider) GetQuotes(underlying string, expiry time.Time, asOf time.Time) ([]Quote, error) {
	logger.Tracef(
		"fetching chain: %s expiry=%s as_of=%s",
		underlying,
		expiry.Format("2006-01-02"),
		asOf.Format("2006-01-02"),
	)

	u, err := url.Parse(chainAPIProv.BaseURL + "/v1/chain")
	if err != nil {
		return nil, err
	}
	query := u.Query()
	query.Set("underlying", underlying)
	query.Set("expiration_date", expiry.Format("2006-01-02"))
	query.Set("as_of", asOf.Format("2006-01-02"))
	query.Set("limit", "1000")
	query.Set("apiKey", chainAPIProv.APIKey)
	u.RawQuery = query.Encode()

	out := []Quote{}
	nextURL := u.String()

	for nextURL != "" {
		req, err := http.NewRequest(http.MethodGet, nextURL, nil)
		if err != nil {
			return nil, err
		}

		resp, err := chainAPIProv.processGetRequest(req)
		if err != nil {
			if chainAPIProv.secondary != nil {
				logger.Tracef("delegating chain request to secondary provider")
				return chainAPIProv.secondary.GetQuotes(underlying, expiry, asOf)
			}
			return nil, fmt.Errorf("fetch chain: %w", err)
		}

		var page chainResp
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode chain response: %w", err)
		}

		for _, row := range page.Results {
			exp, err := time.Parse("2006-01-02", row.Expiry)
			if err != nil {
				logger.Debugf("skipping quote with bad expiry %q", row.Expiry)
				continue
			}
			out = append(out, Quote{
				Underlying: row.Underlying,
				Type:       row.Type,
				Expiry:     exp,
				Strike:     row.Strike,
				Bid:        row.Bid,
				Ask:        row.Ask,
				Spot:       row.Spot,
			})
		}

		nextURL = page.NextURL
		if nextURL != "" {
			logger.Tracef("following chain pagination: %s", nextURL)
		}
	}

	logger.Debugf("fetched %d quotes for %s", len(out), underlying)
	return out, nil
}

// GetRelevantExpiries lists the expiries the API knows inside the range.
func (chainAPIProv *chainAPIProvider) GetRelevantExpiries(underlying string, fromDate, toDate time.Time) ([]time.Time, error) {
	u, err := url.Parse(chainAPIProv.BaseURL + "/v1/expiries")
	if err != nil {
		return nil, err
	}
	query := u.Query()
	query.Set("underlying", underlying)
	query.Set("from", fromDate.Format("2006-01-02"))
	query.Set("to", toDate.Format("2006-01-02"))
	query.Set("apiKey", chainAPIProv.APIKey)
	u.RawQuery = query.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := chainAPIProv.processGetRequest(req)
	if err != nil {
		if chainAPIProv.secondary != nil {
			return chainAPIProv.secondary.GetRelevantExpiries(underlying, fromDate, toDate)
		}
		return nil, fmt.Errorf("fetch expiries: %w", err)
	}
	defer resp.Body.Close()

	var er expiriesResp
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("decode expiries response: %w", err)
	}

	out := make([]time.Time, 0, len(er.Results))
	for _, s := range er.Results {
		dt, err := time.Parse("2006-01-02", s)
		if err != nil {
			logger.Debugf("skipping bad expiry %q", s)
			continue
		}
		out = append(out, dt)
	}
	return out, nil
}

// processGetRequest executes an HTTP GET request with rate-limit handling.
//
// Behavior:
//   - Retries indefinitely on HTTP 429
//   - Sleeps until the next minute boundary
//   - Returns immediately on success (<400)
//   - Returns an error for other status codes
func (chainAPIProv *chainAPIProvider) processGetRequest(req *http.Request) (*http.Response, error) {

	for {
		resp, err := chainAPIProv.Client.Do(req)
		if err != nil {
			return nil, err
		}

		// Success
		if resp.StatusCode < 400 {
			return resp, nil
		}

		// Handle per-minute rate limit (commonly 429)
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()

			// Sleep until the next minute boundary
			now := time.Now()
			sleepDuration := time.Until(
				now.Truncate(time.Minute).Add(time.Minute),
			)

			logger.Infof("rate limit hit, sleeping for %s", sleepDuration)
			time.Sleep(sleepDuration)
			continue
		}

		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}
