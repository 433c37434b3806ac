// Package dashboard is a Go client for the electricity API together with the
// state machines that drive the daily stats table and the day detail view.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DailyStat is one row of GET /api/daily-stats.
type DailyStat struct {
	Date                  string              `json:"date"`
	TotalProduction       decimal.Decimal     `json:"totalProduction"`
	TotalConsumption      decimal.Decimal     `json:"totalConsumption"`
	AvgPrice              decimal.NullDecimal `json:"avgPrice"`
	LongestNegativeStreak int                 `json:"longestNegativeStreak"`
}

// DailyStatsResponse is the body of GET /api/daily-stats.
type DailyStatsResponse struct {
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	OrderBy    string      `json:"orderBy"`
	Order      string      `json:"order"`
	TotalCount int64       `json:"totalCount"`
	Data       []DailyStat `json:"data"`
}

// HourlyReading is one entry of a day's hourly series.
type HourlyReading struct {
	StartTime         string              `json:"startTime"`
	ProductionAmount  decimal.NullDecimal `json:"productionAmount"`
	ConsumptionAmount decimal.NullDecimal `json:"consumptionAmount"`
	HourlyPrice       decimal.NullDecimal `json:"hourlyPrice"`
}

// PeakHour is the hour with the largest consumption surplus.
type PeakHour struct {
	StartTime                 string          `json:"startTime"`
	ConsumptionProductionDiff decimal.Decimal `json:"consumptionProductionDiff"`
}

// CheapestHour is the hour with the lowest price.
type CheapestHour struct {
	StartTime string          `json:"startTime"`
	Price     decimal.Decimal `json:"price"`
}

// DayDetail is the body of GET /api/day/{date}.
type DayDetail struct {
	Date                  string              `json:"date"`
	TotalProduction       decimal.Decimal     `json:"totalProduction"`
	TotalConsumption      decimal.Decimal     `json:"totalConsumption"`
	AvgPrice              decimal.NullDecimal `json:"avgPrice"`
	PeakConsumptionHour   *PeakHour           `json:"peakConsumptionHour"`
	CheapestHour          *CheapestHour       `json:"cheapestHour"`
	LongestNegativeStreak int                 `json:"longestNegativeStreak"`
	HourlyData            []HourlyReading     `json:"hourlyData"`
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("dashboard: http %d", e.Status)
	}
	return fmt.Sprintf("dashboard: http %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client calls the electricity API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient builds a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("dashboard: base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("dashboard: base url %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// DailyStats fetches one page of daily stats for the given query values.
func (c *Client) DailyStats(ctx context.Context, values url.Values) (*DailyStatsResponse, error) {
	var resp DailyStatsResponse
	if err := c.get(ctx, "/api/daily-stats", values, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []DailyStat{}
	}
	return &resp, nil
}

// DayDetail fetches the detail of one YYYY-MM-DD day.
func (c *Client) DayDetail(ctx context.Context, date string) (*DayDetail, error) {
	var resp DayDetail
	if err := c.get(ctx, "/api/day/"+url.PathEscape(date), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, values url.Values, out any) error {
	target := *c.baseURL
	target.Path = c.baseURL.Path + path
	target.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil {
			if json.Unmarshal(data, &body) == nil {
				apiErr.Message = body.Error
			}
		}
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("dashboard: decode %s: %w", path, err)
	}
	return nil
}
