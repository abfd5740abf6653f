package stats

import (
	"encoding/json"

	models "perchfinder/database/models_pkg"
)

// WaterStatsPayload is the full statistics document sent to the advice
// backend. SimilarWhenLikeNow is present if and only if CurrentConditions is
// present and at least one catch had comparable weather data.
type WaterStatsPayload struct {
	WaterName          string             `json:"waterName"`
	TotalCatches       int                `json:"totalCatches"`
	General            *GeneralStats      `json:"general"`
	CurrentConditions  *CurrentConditions `json:"currentConditions,omitempty"`
	SimilarWhenLikeNow *SimilarStats      `json:"similarWhenLikeNow,omitempty"`
}

// BuildPayload assembles the complete stats payload for one water body.
// current may be nil when the live weather lookup failed or was skipped.
// Returns nil for an empty catch history.
func BuildPayload(waterName string, catches []models.Catch, current *CurrentConditions) *WaterStatsPayload {
	general := Aggregate(catches)
	if general == nil {
		return nil
	}

	p := &WaterStatsPayload{
		WaterName:    waterName,
		TotalCatches: len(catches),
		General:      general,
	}

	if current != nil {
		p.CurrentConditions = current
		similar := ScoreSimilar(catches, *current)
		if similar.ComparedCatchCount > 0 {
			p.SimilarWhenLikeNow = &similar
		}
	}

	return p
}

// Signature returns the deterministic serialization of the payload used as
// the cache-validity key. It covers the payload exactly as sent, including
// the optional live-weather sections, so any field change invalidates the
// cached recommendation.
func (p *WaterStatsPayload) Signature() string {
	b, _ := json.Marshal(p)
	return string(b)
}
