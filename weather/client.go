package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"perchfinder/stats"
)

// Client fetches live conditions from an Open-Meteo compatible endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a weather client. Zero timeout defaults to 10 seconds.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type forecastResponse struct {
	Current struct {
		Time            string   `json:"time"`
		Temperature2m   *float64 `json:"temperature_2m"`
		WeatherCode     *int     `json:"weather_code"`
		SurfacePressure *float64 `json:"surface_pressure"`
	} `json:"current"`
}

// CurrentConditions fetches the live weather at a coordinate and maps it to
// the conditions snapshot the similarity scorer consumes. The time-of-day
// bucket is derived from local time now, not from the provider's timestamp.
func (c *Client) CurrentConditions(ctx context.Context, latitude, longitude float64) (*stats.CurrentConditions, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", latitude))
	q.Set("longitude", fmt.Sprintf("%.4f", longitude))
	q.Set("current", "temperature_2m,weather_code,surface_pressure")
	q.Set("timezone", "auto")

	reqURL := c.endpoint + "/v1/forecast?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather request returned status %d", resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	now := time.Now()
	cond := &stats.CurrentConditions{
		ObservedAtIso: now.Format(time.RFC3339),
		TemperatureC:  body.Current.Temperature2m,
		PressureHpa:   body.Current.SurfacePressure,
		WeatherCode:   body.Current.WeatherCode,
		TimeOfDay:     stats.TimeBucket(now),
	}
	if body.Current.Time != "" {
		cond.ObservedAtIso = body.Current.Time
	}
	if cond.WeatherCode != nil {
		if label, ok := stats.WeatherCodeLabel(*cond.WeatherCode); ok {
			cond.WeatherSummary = &label
		}
	}
	return cond, nil
}
