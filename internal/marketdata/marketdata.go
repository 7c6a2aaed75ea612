// Package marketdata fetches exogenous price and load series from an
// external market-data API and aligns them onto a network's snapshots, so
// a scenario can be built with real day-ahead or real-time prices instead
// of hand-entered series.
package marketdata

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Client fetches interval series for a (dataset, location) pair from a
// Grid Status-shaped market-data API.
type Client struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewClient creates a market-data client. If baseURL is empty it defaults
// to "https://api.gridstatus.io".
func NewClient(apiKey string, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.gridstatus.io"
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// QueryParams selects a dataset, location and time window to fetch.
type QueryParams struct {
	DatasetID  string // e.g. "caiso_lmp_real_time_5_min"
	LocationID string // e.g. "TH_NP15_GEN-APND"
	StartTime  time.Time
	EndTime    time.Time
	Timezone   string // e.g. "market", "UTC" (default: "market")
	Download   bool
}

// Error represents an error returned by the market-data API.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string // set for rate-limit errors
}

func (e *Error) Error() string { return e.Message }

// Interval is one row of a dataset query: a value over [StartUTC, EndUTC).
type Interval struct {
	StartLocal time.Time `json:"interval_start_local"`
	StartUTC   time.Time `json:"interval_start_utc"`
	EndLocal   time.Time `json:"interval_end_local"`
	EndUTC     time.Time `json:"interval_end_utc"`

	Market   string `json:"market"`
	Location string `json:"location"`

	// Value is the dataset's primary measure: LMP in $/MWh for price
	// datasets, MW for load datasets.
	Value      float64 `json:"value"`
	Energy     float64 `json:"energy"`
	Congestion float64 `json:"congestion"`
	Loss       float64 `json:"loss"`
}

func (i Interval) Duration() time.Duration {
	if !i.EndUTC.IsZero() && !i.StartUTC.IsZero() {
		return i.EndUTC.Sub(i.StartUTC)
	}
	return i.EndLocal.Sub(i.StartLocal)
}

// Response is the decoded payload of a dataset query.
type Response struct {
	StatusCode int        `json:"status_code"`
	Data       []Interval `json:"data"`
}

// Query fetches the interval series for params, consulting and populating
// the dev-only response cache along the way.
//
// WARNING: if caching is enabled (ENABLE_MARKETDATA_CACHE=true), responses
// may be cached in memory. Caching is for LOCAL DEVELOPMENT ONLY; check the
// upstream API's terms of use before enabling it anywhere else.
func (c *Client) Query(params QueryParams) (*Response, error) {
	if err := c.validateAPIKey(); err != nil {
		return nil, err
	}

	cache := GetCache()
	if cache != nil {
		cacheKey := GenerateCacheKey(params)
		if cached, found := cache.Get(cacheKey); found {
			log.Printf("[marketdata] cache hit: %d intervals (dataset=%s, location=%s, start=%s, end=%s)",
				len(cached.Data), params.DatasetID, params.LocationID,
				params.StartTime.Format("2006-01-02"), params.EndTime.Format("2006-01-02"))
			return cached, nil
		}
	}

	if params.DatasetID == "" {
		return nil, fmt.Errorf("dataset_id is required")
	}
	if params.LocationID == "" {
		return nil, fmt.Errorf("location_id is required")
	}
	if params.StartTime.IsZero() || params.EndTime.IsZero() {
		return nil, fmt.Errorf("start_time and end_time are required")
	}
	if params.StartTime.After(params.EndTime) {
		return nil, fmt.Errorf("start_time must be before end_time")
	}

	path := fmt.Sprintf("/v1/datasets/%s/query/location/%s", params.DatasetID, params.LocationID)
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	q := u.Query()
	q.Set("start_time", params.StartTime.Format("2006-01-02"))
	q.Set("end_time", params.EndTime.Format("2006-01-02"))
	if params.Timezone != "" {
		q.Set("timezone", params.Timezone)
	} else {
		q.Set("timezone", "market")
	}
	if params.Download {
		q.Set("download", "true")
	}
	u.RawQuery = q.Encode()

	log.Printf("[marketdata] request: GET %s (dataset=%s, location=%s, start=%s, end=%s)",
		u.Path, params.DatasetID, params.LocationID,
		params.StartTime.Format("2006-01-02"), params.EndTime.Format("2006-01-02"))

	req, err := http.NewRequest("GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Printf("[marketdata] request failed: %v (duration: %v)", err, duration)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("[marketdata] response: %d %s (duration: %v, dataset=%s, location=%s)",
		resp.StatusCode, resp.Status, duration, params.DatasetID, params.LocationID)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return nil, &Error{StatusCode: resp.StatusCode, Code: "INVALID_API_KEY", Message: "invalid API key or insufficient permissions"}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		return nil, &Error{StatusCode: resp.StatusCode, Code: "RATE_LIMIT_EXCEEDED", Message: fmt.Sprintf("rate limit exceeded, retry after: %s", retryAfter), RetryAfter: retryAfter}
	case http.StatusUnauthorized:
		return nil, &Error{StatusCode: resp.StatusCode, Code: "UNAUTHORIZED", Message: "unauthorized: invalid API key"}
	default:
		return nil, &Error{StatusCode: resp.StatusCode, Code: "API_ERROR", Message: fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status)}
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	log.Printf("[marketdata] success: %d intervals (dataset=%s, location=%s)", len(result.Data), params.DatasetID, params.LocationID)

	if cache := GetCache(); cache != nil {
		cache.Set(GenerateCacheKey(params), &result)
	}

	return &result, nil
}

func (c *Client) validateAPIKey() error {
	if c.APIKey == "" {
		return &Error{Code: "MISSING_API_KEY", Message: "API key is required"}
	}
	if len(c.APIKey) < 10 {
		return &Error{Code: "INVALID_API_KEY_FORMAT", Message: "API key appears to be invalid (too short)"}
	}
	return nil
}

// QueryByString is a convenience wrapper taking "YYYY-MM-DD" date strings.
func (c *Client) QueryByString(datasetID, locationID, startDate, endDate string) (*Response, error) {
	startTime, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date format (expected YYYY-MM-DD): %w", err)
	}
	endTime, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end_date format (expected YYYY-MM-DD): %w", err)
	}
	return c.Query(QueryParams{
		DatasetID:  datasetID,
		LocationID: locationID,
		StartTime:  startTime,
		EndTime:    endTime,
		Timezone:   "market",
		Download:   true,
	})
}
