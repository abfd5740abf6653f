package stats

import (
	models "perchfinder/database/models_pkg"
)

// GeneralStats is the water-wide historical aggregation sent to the advice
// backend as the "general" section of the stats payload.
type GeneralStats struct {
	TopLures          []string `json:"topLures"`
	TopLureCategories []string `json:"topLureCategories"`
	TopMethods        []string `json:"topMethods"`
	TopJigMethods     []string `json:"topJigMethods"`
	BestTimeOfDay     string   `json:"bestTimeOfDay"`
	AvgTempC          *float64 `json:"avgTempC"`
	CommonWeather     *string  `json:"commonWeather"`
	AvgPressureHpa    *float64 `json:"avgPressureHpa"`
}

// Aggregate computes the water-wide statistics over the full catch history.
// Returns nil for an empty history, signaling "no data" to the caller.
// Pure function of its input.
func Aggregate(catches []models.Catch) *GeneralStats {
	if len(catches) == 0 {
		return nil
	}

	t := newTally()
	for i := range catches {
		t.add(&catches[i])
	}

	bestTime, ok := t.times.Best()
	if !ok {
		bestTime = "okänt"
	}

	return &GeneralStats{
		TopLures:          t.lures.Top(4),
		TopLureCategories: t.categories.Top(4),
		TopMethods:        t.methods.Top(4),
		TopJigMethods:     t.jigMethods.Top(4),
		BestTimeOfDay:     bestTime,
		AvgTempC:          t.avgTempC(),
		CommonWeather:     t.commonWeather(),
		AvgPressureHpa:    t.avgPressureHpa(),
	}
}
