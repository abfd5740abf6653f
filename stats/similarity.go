package stats

import (
	"math"
	"sort"

	models "perchfinder/database/models_pkg"
)

// CurrentConditions is the live weather snapshot fetched at
// recommendation-request time.
type CurrentConditions struct {
	ObservedAtIso  string   `json:"observedAtIso"`
	WeatherSummary *string  `json:"weatherSummary"`
	WeatherCode    *int     `json:"weatherCode"`
	TemperatureC   *float64 `json:"temperatureC"`
	PressureHpa    *float64 `json:"pressureHpa"`
	TimeOfDay      string   `json:"timeOfDay"`
}

// SimilarStats is the aggregation restricted to the catches most resembling
// the current conditions. ComparedCatchCount is the number of catches with
// any weather data at all; MatchedCatchCount is the size of the selected
// match window.
type SimilarStats struct {
	TopLures           []string `json:"topLures"`
	TopLureCategories  []string `json:"topLureCategories"`
	TopMethods         []string `json:"topMethods"`
	TopJigMethods      []string `json:"topJigMethods"`
	TopTimesOfDay      []string `json:"topTimesOfDay"`
	CommonWeather      *string  `json:"commonWeather"`
	AvgTempC           *float64 `json:"avgTempC"`
	AvgPressureHpa     *float64 `json:"avgPressureHpa"`
	ComparedCatchCount int      `json:"comparedCatchCount"`
	MatchedCatchCount  int      `json:"matchedCatchCount"`
}

// Distance penalties for missing or mismatching features. The score is a
// distance, lower = more similar. Pressure deltas are divided by 4 so their
// natural range (tens of hPa) doesn't drown out temperature deltas; a weather
// code mismatch is a flat penalty because discrete codes can't be
// interpolated between.
const (
	missingTempPenalty     = 6.0
	missingPressurePenalty = 16.0
	weatherCodePenalty     = 8.0
	timeBucketPenalty      = 4.0
)

type scoredCatch struct {
	catch *models.Catch
	score float64
}

// ScoreSimilar selects the historical catches most resembling the current
// conditions and aggregates statistics over that subset only. Catches with
// no weather data at all are excluded from comparison. Pure function of its
// input.
func ScoreSimilar(catches []models.Catch, current CurrentConditions) SimilarStats {
	scored := make([]scoredCatch, 0, len(catches))
	for i := range catches {
		c := &catches[i]
		if c.TemperatureC == nil && c.PressureHpa == nil && c.WeatherCode == nil {
			continue
		}
		scored = append(scored, scoredCatch{catch: c, score: similarityScore(c, current)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score < scored[j].score
	})

	matched := scored[:matchWindow(len(scored))]

	t := newTally()
	for _, s := range matched {
		t.add(s.catch)
	}

	return SimilarStats{
		TopLures:           t.lures.Top(3),
		TopLureCategories:  t.categories.Top(3),
		TopMethods:         t.methods.Top(3),
		TopJigMethods:      t.jigMethods.Top(3),
		TopTimesOfDay:      t.times.Top(2),
		CommonWeather:      t.commonWeather(),
		AvgTempC:           t.avgTempC(),
		AvgPressureHpa:     t.avgPressureHpa(),
		ComparedCatchCount: len(scored),
		MatchedCatchCount:  len(matched),
	}
}

// similarityScore computes the weighted distance between one historical catch
// and the current conditions. Missing numeric features cost a fixed penalty
// instead of being skipped, so sparsely-recorded catches don't look
// artificially similar.
func similarityScore(c *models.Catch, current CurrentConditions) float64 {
	tempDelta := missingTempPenalty
	if c.TemperatureC != nil && current.TemperatureC != nil {
		tempDelta = math.Abs(*c.TemperatureC - *current.TemperatureC)
	}

	pressureDelta := missingPressurePenalty
	if c.PressureHpa != nil && current.PressureHpa != nil {
		pressureDelta = math.Abs(*c.PressureHpa - *current.PressureHpa)
	}

	weatherPenalty := 0.0
	if c.WeatherCode != nil && current.WeatherCode != nil && *c.WeatherCode != *current.WeatherCode {
		weatherPenalty = weatherCodePenalty
	}

	timePenalty := timeBucketPenalty
	if TimeBucket(c.CaughtAt) == current.TimeOfDay {
		timePenalty = 0
	}

	return tempDelta + pressureDelta/4 + weatherPenalty + timePenalty
}

// matchWindow sizes the match subset: at least 5, at most 12, scaling with
// the amount of comparable data (35%), never exceeding it.
func matchWindow(comparable int) int {
	if comparable == 0 {
		return 0
	}
	w := int(math.Ceil(0.35 * float64(comparable)))
	if w < 5 {
		w = 5
	}
	if w > 12 {
		w = 12
	}
	if w > comparable {
		w = comparable
	}
	return w
}
