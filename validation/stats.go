package validation

import (
	"fmt"
	"time"

	"perchfinder/stats"
)

// Plausibility bounds for client-supplied statistics. The advice endpoint
// trusts nothing from the payload beyond these checks; anything outside them
// is rejected before the LLM ever sees it.
const (
	MinTemperatureC = -50.0
	MaxTemperatureC = 60.0
	MinPressureHpa  = 850.0
	MaxPressureHpa  = 1150.0
	MaxCatchCount   = 50000
	MaxNameLength   = 120
	MaxListLength   = 10
	MaxLabelLength  = 120
)

// ValidationError names the offending field and the constraint it broke.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Constraint)
}

func fail(field, constraint string) error {
	return &ValidationError{Field: field, Constraint: constraint}
}

// CheckPayload validates a full stats payload against the plausibility
// bounds. The first violation wins.
func CheckPayload(p *stats.WaterStatsPayload) error {
	if p == nil {
		return fail("payload", "must be present")
	}
	if p.WaterName == "" || len(p.WaterName) > MaxNameLength {
		return fail("waterName", "must be 1-120 characters")
	}
	if p.TotalCatches < 0 || p.TotalCatches > MaxCatchCount {
		return fail("totalCatches", "must be between 0 and 50000")
	}
	if p.General == nil {
		return fail("general", "must be present")
	}
	if err := checkGeneral(p.General); err != nil {
		return err
	}
	if p.SimilarWhenLikeNow != nil && p.CurrentConditions == nil {
		return fail("similarWhenLikeNow", "requires currentConditions")
	}
	if p.CurrentConditions != nil {
		if err := checkConditions(p.CurrentConditions); err != nil {
			return err
		}
	}
	if p.SimilarWhenLikeNow != nil {
		if err := checkSimilar(p.SimilarWhenLikeNow, p.TotalCatches); err != nil {
			return err
		}
	}
	return nil
}

func checkGeneral(g *stats.GeneralStats) error {
	if err := checkList("general.topLures", g.TopLures); err != nil {
		return err
	}
	if err := checkList("general.topLureCategories", g.TopLureCategories); err != nil {
		return err
	}
	if err := checkList("general.topMethods", g.TopMethods); err != nil {
		return err
	}
	if err := checkList("general.topJigMethods", g.TopJigMethods); err != nil {
		return err
	}
	if len(g.BestTimeOfDay) > MaxLabelLength {
		return fail("general.bestTimeOfDay", "must be at most 120 characters")
	}
	if err := checkTemp("general.avgTempC", g.AvgTempC); err != nil {
		return err
	}
	if err := checkPressure("general.avgPressureHpa", g.AvgPressureHpa); err != nil {
		return err
	}
	if err := checkLabel("general.commonWeather", g.CommonWeather); err != nil {
		return err
	}
	return nil
}

func checkConditions(c *stats.CurrentConditions) error {
	if c.ObservedAtIso != "" {
		if !parsesAsTime(c.ObservedAtIso) {
			return fail("currentConditions.observedAtIso", "must be an ISO timestamp")
		}
	}
	if err := checkTemp("currentConditions.temperatureC", c.TemperatureC); err != nil {
		return err
	}
	if err := checkPressure("currentConditions.pressureHpa", c.PressureHpa); err != nil {
		return err
	}
	if err := checkLabel("currentConditions.weatherSummary", c.WeatherSummary); err != nil {
		return err
	}
	if len(c.TimeOfDay) > MaxLabelLength {
		return fail("currentConditions.timeOfDay", "must be at most 120 characters")
	}
	return nil
}

func checkSimilar(s *stats.SimilarStats, totalCatches int) error {
	if err := checkList("similarWhenLikeNow.topLures", s.TopLures); err != nil {
		return err
	}
	if err := checkList("similarWhenLikeNow.topLureCategories", s.TopLureCategories); err != nil {
		return err
	}
	if err := checkList("similarWhenLikeNow.topMethods", s.TopMethods); err != nil {
		return err
	}
	if err := checkList("similarWhenLikeNow.topJigMethods", s.TopJigMethods); err != nil {
		return err
	}
	if err := checkList("similarWhenLikeNow.topTimesOfDay", s.TopTimesOfDay); err != nil {
		return err
	}
	if err := checkTemp("similarWhenLikeNow.avgTempC", s.AvgTempC); err != nil {
		return err
	}
	if err := checkPressure("similarWhenLikeNow.avgPressureHpa", s.AvgPressureHpa); err != nil {
		return err
	}
	if err := checkLabel("similarWhenLikeNow.commonWeather", s.CommonWeather); err != nil {
		return err
	}
	if s.ComparedCatchCount < 0 || s.ComparedCatchCount > MaxCatchCount {
		return fail("similarWhenLikeNow.comparedCatchCount", "must be between 0 and 50000")
	}
	if s.MatchedCatchCount < 0 || s.MatchedCatchCount > s.ComparedCatchCount {
		return fail("similarWhenLikeNow.matchedCatchCount", "must not exceed comparedCatchCount")
	}
	if s.ComparedCatchCount > totalCatches {
		return fail("similarWhenLikeNow.comparedCatchCount", "must not exceed totalCatches")
	}
	return nil
}

func checkList(field string, list []string) error {
	if len(list) > MaxListLength {
		return fail(field, "must have at most 10 entries")
	}
	for _, entry := range list {
		if len(entry) > MaxLabelLength {
			return fail(field, "entries must be at most 120 characters")
		}
	}
	return nil
}

func checkLabel(field string, label *string) error {
	if label != nil && len(*label) > MaxLabelLength {
		return fail(field, "must be at most 120 characters")
	}
	return nil
}

func checkTemp(field string, v *float64) error {
	if v != nil && (*v < MinTemperatureC || *v > MaxTemperatureC) {
		return fail(field, "must be between -50 and 60")
	}
	return nil
}

func checkPressure(field string, v *float64) error {
	if v != nil && (*v < MinPressureHpa || *v > MaxPressureHpa) {
		return fail(field, "must be between 850 and 1150")
	}
	return nil
}

func parsesAsTime(value string) bool {
	if _, err := time.Parse(time.RFC3339, value); err == nil {
		return true
	}
	// Open-Meteo emits minute precision without zone, e.g. "2025-06-14T08:30".
	if _, err := time.Parse("2006-01-02T15:04", value); err == nil {
		return true
	}
	return false
}
