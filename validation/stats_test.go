package validation

import (
	"errors"
	"testing"

	"perchfinder/stats"
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
func intPtr(v int) *int           { return &v }

func validPayload() *stats.WaterStatsPayload {
	return &stats.WaterStatsPayload{
		WaterName:    "Brunnsviken",
		TotalCatches: 42,
		General: &stats.GeneralStats{
			TopLures:       []string{"Svartzonker Jerry 10cm Motoroil"},
			BestTimeOfDay:  "Morgon",
			AvgTempC:       floatPtr(12.3),
			AvgPressureHpa: floatPtr(1006),
			CommonWeather:  strPtr("Molnigt"),
		},
	}
}

func withConditions(p *stats.WaterStatsPayload) *stats.WaterStatsPayload {
	p.CurrentConditions = &stats.CurrentConditions{
		ObservedAtIso: "2025-06-14T08:30:00Z",
		WeatherCode:   intPtr(3),
		TemperatureC:  floatPtr(12.4),
		PressureHpa:   floatPtr(1006.2),
		TimeOfDay:     "Morgon",
	}
	p.SimilarWhenLikeNow = &stats.SimilarStats{
		TopLures:           []string{"Svartzonker Jerry 10cm Motoroil"},
		TopTimesOfDay:      []string{"Morgon", "Dag"},
		AvgTempC:           floatPtr(12.3),
		AvgPressureHpa:     floatPtr(1006),
		ComparedCatchCount: 3,
		MatchedCatchCount:  3,
	}
	return p
}

func TestCheckPayload(t *testing.T) {
	longName := make([]byte, 121)
	for i := range longName {
		longName[i] = 'a'
	}
	bigList := make([]string, 11)

	tests := []struct {
		name      string
		mutate    func(*stats.WaterStatsPayload)
		wantField string
	}{
		{"valid without conditions", func(p *stats.WaterStatsPayload) {}, ""},
		{"nil general", func(p *stats.WaterStatsPayload) { p.General = nil }, "general"},
		{"empty water name", func(p *stats.WaterStatsPayload) { p.WaterName = "" }, "waterName"},
		{"overlong water name", func(p *stats.WaterStatsPayload) { p.WaterName = string(longName) }, "waterName"},
		{"negative catch count", func(p *stats.WaterStatsPayload) { p.TotalCatches = -1 }, "totalCatches"},
		{"absurd catch count", func(p *stats.WaterStatsPayload) { p.TotalCatches = 50001 }, "totalCatches"},
		{"too many lures", func(p *stats.WaterStatsPayload) { p.General.TopLures = bigList }, "general.topLures"},
		{"temperature too low", func(p *stats.WaterStatsPayload) { p.General.AvgTempC = floatPtr(-51) }, "general.avgTempC"},
		{"temperature too high", func(p *stats.WaterStatsPayload) { p.General.AvgTempC = floatPtr(61) }, "general.avgTempC"},
		{"pressure too low", func(p *stats.WaterStatsPayload) { p.General.AvgPressureHpa = floatPtr(849) }, "general.avgPressureHpa"},
		{"pressure too high", func(p *stats.WaterStatsPayload) { p.General.AvgPressureHpa = floatPtr(1151) }, "general.avgPressureHpa"},
		{"overlong weather label", func(p *stats.WaterStatsPayload) { p.General.CommonWeather = strPtr(string(longName)) }, "general.commonWeather"},
		{"similar without conditions", func(p *stats.WaterStatsPayload) {
			p.SimilarWhenLikeNow = &stats.SimilarStats{}
		}, "similarWhenLikeNow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(p)
			err := CheckPayload(p)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("CheckPayload() = %v, want nil", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("CheckPayload() = %v, want ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("field = %s, want %s", verr.Field, tt.wantField)
			}
		})
	}
}

func TestCheckPayloadWithConditions(t *testing.T) {
	if err := CheckPayload(withConditions(validPayload())); err != nil {
		t.Fatalf("CheckPayload() = %v, want nil", err)
	}

	// Open-Meteo minute-precision timestamps pass too.
	p := withConditions(validPayload())
	p.CurrentConditions.ObservedAtIso = "2025-06-14T08:30"
	if err := CheckPayload(p); err != nil {
		t.Fatalf("minute-precision timestamp rejected: %v", err)
	}

	p = withConditions(validPayload())
	p.CurrentConditions.ObservedAtIso = "yesterday"
	if err := CheckPayload(p); err == nil {
		t.Errorf("garbage timestamp should fail")
	}

	p = withConditions(validPayload())
	p.SimilarWhenLikeNow.MatchedCatchCount = p.SimilarWhenLikeNow.ComparedCatchCount + 1
	if err := CheckPayload(p); err == nil {
		t.Errorf("matched > compared should fail")
	}

	p = withConditions(validPayload())
	p.SimilarWhenLikeNow.ComparedCatchCount = p.TotalCatches + 1
	if err := CheckPayload(p); err == nil {
		t.Errorf("compared > total should fail")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "waterName", Constraint: "must be 1-120 characters"}
	if err.Error() != "invalid waterName: must be 1-120 characters" {
		t.Errorf("Error() = %q", err.Error())
	}
}
