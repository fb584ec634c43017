package openmeteo

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestClientDailyRequest(t *testing.T) {
	respBody := `{"daily":{"time":["2024-06-03","2024-06-04"],
		"temperature_2m_max":[88.1,null],
		"temperature_2m_min":[70.2,65],
		"precipitation_sum":[0,1.25],
		"weather_code":[1,95],
		"wind_gusts_10m_max":[12.4,48]}}`

	var captured *http.Request
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, respBody), nil
	})

	client := NewClient(WithBaseURL("http://weather.test/"), WithHTTPClient(&http.Client{Transport: rt}))
	days, err := client.Daily(context.Background(), DailyRequest{
		Latitude:  40.7128,
		Longitude: -74.006,
		Timezone:  "America/New_York",
		Start:     time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("daily: %v", err)
	}

	if captured.URL.Path != "/v1/archive" {
		t.Fatalf("unexpected path %q", captured.URL.Path)
	}
	q := captured.URL.Query()
	checks := map[string]string{
		"latitude":           "40.7128",
		"longitude":          "-74.006",
		"start_date":         "2024-06-03",
		"end_date":           "2024-06-04",
		"temperature_unit":   "fahrenheit",
		"precipitation_unit": "inch",
		"wind_speed_unit":    "mph",
		"timezone":           "America/New_York",
		"daily":              dailyFields,
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Fatalf("query %s = %q, want %q", key, got, want)
		}
	}

	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].TempMaxF == nil || *days[0].TempMaxF != 88.1 {
		t.Fatalf("unexpected max temp %+v", days[0].TempMaxF)
	}
	if days[1].TempMaxF != nil {
		t.Fatalf("expected null max temp to stay nil")
	}
	if days[1].WeatherCode == nil || *days[1].WeatherCode != 95 {
		t.Fatalf("unexpected weather code %+v", days[1].WeatherCode)
	}
	if days[1].PrecipitationIn == nil || *days[1].PrecipitationIn != 1.25 {
		t.Fatalf("unexpected precipitation %+v", days[1].PrecipitationIn)
	}
}

func TestClientDailyUpstreamError(t *testing.T) {
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"error":true,"reason":"bad range"}`), nil
	})
	client := NewClient(WithHTTPClient(&http.Client{Transport: rt}))

	_, err := client.Daily(context.Background(), DailyRequest{
		Start: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad range") {
		t.Fatalf("expected upstream reason in error, got %v", err)
	}
}

func TestClientDailyRejectsInvertedRange(t *testing.T) {
	client := NewClient()
	_, err := client.Daily(context.Background(), DailyRequest{
		Start: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
