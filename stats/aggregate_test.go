package stats

import (
	"reflect"
	"testing"
	"time"

	models "perchfinder/database/models_pkg"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }

func catchAt(hour int) models.Catch {
	return models.Catch{
		WaterID:  "w1",
		CaughtAt: time.Date(2025, 6, 14, hour, 30, 0, 0, time.UTC),
	}
}

func catchWithLure(hour int, lure *models.Lure) models.Catch {
	c := catchAt(hour)
	c.Lure = lure
	return c
}

func TestAggregateEmptyReturnsNil(t *testing.T) {
	if got := Aggregate(nil); got != nil {
		t.Errorf("expected nil for empty history, got %+v", got)
	}
	if got := Aggregate([]models.Catch{}); got != nil {
		t.Errorf("expected nil for empty slice, got %+v", got)
	}
}

func TestAggregateTopLuresStableTieBreak(t *testing.T) {
	lureA := &models.Lure{Brand: "Keitech", Name: "Swing Impact", Color: "Motoroil"}
	lureB := &models.Lure{Brand: "Westin", Name: "Swim", Color: "Perch"}
	lureC := &models.Lure{Brand: "Rapala", Name: "Original Floater", Color: "Bleak"}

	// A and B tie at 3, C has 1; insertion order A, B, C.
	var catches []models.Catch
	for i := 0; i < 3; i++ {
		catches = append(catches, catchWithLure(8, lureA))
	}
	for i := 0; i < 3; i++ {
		catches = append(catches, catchWithLure(8, lureB))
	}
	catches = append(catches, catchWithLure(8, lureC))

	got := Aggregate(catches)
	want := []string{"Keitech Swing Impact Motoroil", "Westin Swim Perch", "Rapala Original Floater Bleak"}
	if !reflect.DeepEqual(got.TopLures, want) {
		t.Errorf("TopLures = %v, want %v", got.TopLures, want)
	}
}

func TestAggregateMeanHandlesMissingValues(t *testing.T) {
	c1 := catchAt(8)
	c1.TemperatureC = floatPtr(10)
	c2 := catchAt(8)
	c2.TemperatureC = floatPtr(20)
	c3 := catchAt(8) // no temperature

	got := Aggregate([]models.Catch{c1, c2, c3})
	if got.AvgTempC == nil || *got.AvgTempC != 15.0 {
		t.Errorf("AvgTempC = %v, want 15.0", got.AvgTempC)
	}

	allNull := Aggregate([]models.Catch{catchAt(8), catchAt(8)})
	if allNull.AvgTempC != nil {
		t.Errorf("AvgTempC = %v, want nil when no catch has a temperature", allNull.AvgTempC)
	}
	if allNull.AvgPressureHpa != nil {
		t.Errorf("AvgPressureHpa = %v, want nil", allNull.AvgPressureHpa)
	}
}

func TestAggregatePressureRounding(t *testing.T) {
	c1 := catchAt(8)
	c1.PressureHpa = floatPtr(1013.4)
	c2 := catchAt(8)
	c2.PressureHpa = floatPtr(1014.1)

	got := Aggregate([]models.Catch{c1, c2})
	// (1013.4+1014.1)/2 = 1013.75 -> rounds to 1014
	if got.AvgPressureHpa == nil || *got.AvgPressureHpa != 1014 {
		t.Errorf("AvgPressureHpa = %v, want 1014", got.AvgPressureHpa)
	}
}

func TestAggregateWeatherLabelFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		summary *string
		code    *int
		want    string
	}{
		{"summary wins", strPtr("Lätt regn"), intPtr(3), "Lätt regn"},
		{"mapped code", nil, intPtr(3), "Molnigt"},
		{"unmapped code", nil, intPtr(12), "Kod 12"},
		{"nothing", nil, nil, "Okänt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := catchAt(8)
			c.WeatherSummary = tt.summary
			c.WeatherCode = tt.code
			got := Aggregate([]models.Catch{c})
			if got.CommonWeather == nil || *got.CommonWeather != tt.want {
				t.Errorf("CommonWeather = %v, want %q", got.CommonWeather, tt.want)
			}
		})
	}
}

func TestAggregateTimeBuckets(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{5, "Morgon"},
		{9, "Morgon"},
		{10, "Dag"},
		{15, "Dag"},
		{16, "Kväll"},
		{21, "Kväll"},
		{22, "Natt"},
		{3, "Natt"},
	}
	for _, tt := range tests {
		got := TimeBucket(time.Date(2025, 6, 14, tt.hour, 0, 0, 0, time.UTC))
		if got != tt.want {
			t.Errorf("TimeBucket(hour %d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestAggregateJigMethodsGatedByLureCategory(t *testing.T) {
	jig := &models.Lure{Brand: "Keitech", Name: "Easy Shiner", Color: "Sight Flash", Type: "Jigg"}
	wobbler := &models.Lure{Brand: "Rapala", Name: "Original Floater", Color: "Bleak", Type: "Wobbler"}

	c1 := catchWithLure(8, jig)
	c1.Method = strPtr("Dragging")
	c2 := catchWithLure(8, wobbler)
	c2.Method = strPtr("Jerk")

	got := Aggregate([]models.Catch{c1, c2})
	if !reflect.DeepEqual(got.TopJigMethods, []string{"Dragging"}) {
		t.Errorf("TopJigMethods = %v, want [Dragging]", got.TopJigMethods)
	}
	wantMethods := []string{"Dragging", "Jerk"}
	if !reflect.DeepEqual(got.TopMethods, wantMethods) {
		t.Errorf("TopMethods = %v, want %v", got.TopMethods, wantMethods)
	}
}

func TestAggregateCategoryFallsBackToLegacyType(t *testing.T) {
	legacy := &models.Lure{Brand: "Westin", Name: "Swim", Color: "Perch", Type: "Swimbait"}
	modern := &models.Lure{Brand: "Keitech", Name: "Swing Impact", Color: "Motoroil", Type: "Jigg", Category: strPtr("Mjukbete")}

	got := Aggregate([]models.Catch{catchWithLure(8, legacy), catchWithLure(8, modern)})
	want := []string{"Swimbait", "Mjukbete"}
	if !reflect.DeepEqual(got.TopLureCategories, want) {
		t.Errorf("TopLureCategories = %v, want %v", got.TopLureCategories, want)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	lure := &models.Lure{Brand: "Keitech", Name: "Swing Impact", Color: "Motoroil", Type: "Jigg"}
	c := catchWithLure(8, lure)
	c.TemperatureC = floatPtr(12.3)
	c.PressureHpa = floatPtr(1008)
	c.WeatherCode = intPtr(61)
	catches := []models.Catch{c, catchAt(14), catchAt(23)}

	first := Aggregate(catches)
	second := Aggregate(catches)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Aggregate is not deterministic: %+v vs %+v", first, second)
	}
}
