package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCurrentConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" {
			t.Errorf("path = %s, want /v1/forecast", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("current") != "temperature_2m,weather_code,surface_pressure" {
			t.Errorf("current param = %q", q.Get("current"))
		}
		if q.Get("timezone") != "auto" {
			t.Errorf("timezone param = %q", q.Get("timezone"))
		}
		if q.Get("latitude") != "59.3733" {
			t.Errorf("latitude param = %q", q.Get("latitude"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"current": {
				"time": "2025-06-14T08:30",
				"temperature_2m": 12.4,
				"weather_code": 3,
				"surface_pressure": 1006.2
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	cond, err := c.CurrentConditions(context.Background(), 59.37331, 18.04925)
	if err != nil {
		t.Fatalf("CurrentConditions() error = %v", err)
	}

	if cond.TemperatureC == nil || *cond.TemperatureC != 12.4 {
		t.Errorf("TemperatureC = %v, want 12.4", cond.TemperatureC)
	}
	if cond.PressureHpa == nil || *cond.PressureHpa != 1006.2 {
		t.Errorf("PressureHpa = %v, want 1006.2", cond.PressureHpa)
	}
	if cond.WeatherCode == nil || *cond.WeatherCode != 3 {
		t.Errorf("WeatherCode = %v, want 3", cond.WeatherCode)
	}
	if cond.WeatherSummary == nil || *cond.WeatherSummary != "Molnigt" {
		t.Errorf("WeatherSummary = %v, want Molnigt", cond.WeatherSummary)
	}
	if cond.ObservedAtIso != "2025-06-14T08:30" {
		t.Errorf("ObservedAtIso = %q", cond.ObservedAtIso)
	}
	if cond.TimeOfDay == "" {
		t.Errorf("TimeOfDay should be derived")
	}
}

func TestCurrentConditionsNullFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current": {"time": "2025-06-14T08:30"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	cond, err := c.CurrentConditions(context.Background(), 59.0, 18.0)
	if err != nil {
		t.Fatalf("CurrentConditions() error = %v", err)
	}
	if cond.TemperatureC != nil || cond.PressureHpa != nil || cond.WeatherCode != nil {
		t.Errorf("missing provider fields should stay nil: %+v", cond)
	}
	if cond.WeatherSummary != nil {
		t.Errorf("WeatherSummary should be nil without a code")
	}
}

func TestCurrentConditionsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.CurrentConditions(context.Background(), 59.0, 18.0); err == nil {
		t.Fatal("expected error on 502 response")
	}
}
