package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://archive-api.open-meteo.com"
	archivePath                 = "/v1/archive"
	dailyFields                 = "temperature_2m_max,temperature_2m_min,precipitation_sum,weather_code,wind_gusts_10m_max"
	dateLayout                  = "2006-01-02"
	responseBodyReadLimit int64 = 1024
)

// Client reads daily history from the Open-Meteo archive API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the archive host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// DailyRequest selects one coordinate and an inclusive date range.
type DailyRequest struct {
	Latitude  float64
	Longitude float64
	Timezone  string
	Start     time.Time
	End       time.Time
}

// Day is one day of archive data in imperial units. Nil fields were null
// upstream.
type Day struct {
	Date            time.Time
	TempMaxF        *float64
	TempMinF        *float64
	PrecipitationIn *float64
	WeatherCode     *int
	WindGustMaxMPH  *float64
}

// Daily fetches temperature (°F), precipitation (in), WMO weather code and
// max gust (mph) per day.
func (c *Client) Daily(ctx context.Context, req DailyRequest) ([]Day, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "weather client not configured")
	}
	if req.Start.IsZero() || req.End.IsZero() || req.End.Before(req.Start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid date range is required")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(req), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build archive request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute archive request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "archive request failed")
	}

	var apiResp struct {
		Daily struct {
			Time          []string   `json:"time"`
			TempMax       []*float64 `json:"temperature_2m_max"`
			TempMin       []*float64 `json:"temperature_2m_min"`
			Precipitation []*float64 `json:"precipitation_sum"`
			WeatherCode   []*float64 `json:"weather_code"`
			WindGustMax   []*float64 `json:"wind_gusts_10m_max"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode archive response")
	}

	daily := apiResp.Daily
	days := make([]Day, 0, len(daily.Time))
	for i, raw := range daily.Time {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			continue
		}
		day := Day{
			Date:            date,
			TempMaxF:        at(daily.TempMax, i),
			TempMinF:        at(daily.TempMin, i),
			PrecipitationIn: at(daily.Precipitation, i),
			WindGustMaxMPH:  at(daily.WindGustMax, i),
		}
		if code := at(daily.WeatherCode, i); code != nil {
			v := int(*code)
			day.WeatherCode = &v
		}
		days = append(days, day)
	}
	return days, nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func (c *Client) buildURL(req DailyRequest) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
	q.Set("start_date", req.Start.Format(dateLayout))
	q.Set("end_date", req.End.Format(dateLayout))
	q.Set("daily", dailyFields)
	q.Set("temperature_unit", "fahrenheit")
	q.Set("precipitation_unit", "inch")
	q.Set("wind_speed_unit", "mph")
	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = "auto"
	}
	q.Set("timezone", tz)
	return strings.TrimRight(c.baseURL, "/") + archivePath + "?" + q.Encode()
}
