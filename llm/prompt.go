package llm

import (
	"encoding/json"
	"fmt"

	"perchfinder/stats"
)

// FormatRecommendationPrompt renders the user prompt for one water's
// aggregated statistics. The stats go in as pretty-printed JSON so the model
// sees exactly the numbers the app computed.
func FormatRecommendationPrompt(payload *stats.WaterStatsPayload) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal stats payload: %w", err)
	}

	prompt := fmt.Sprintf(`Här är fångststatistik för vattnet "%s" (%d fångster totalt):

%s

Ge en rekommendation för hur man bäst fiskar abborre i detta vatten just nu.
Svara med två rubriker: "Generellt i vattnet" och "När vädret liknar nu".
Om statistiken saknar väderjämförelse, skriv kort under den andra rubriken att
underlaget är för tunt. Max cirka 170 ord totalt. Nämn konkreta beten, tider
och metoder ur statistiken.`, payload.WaterName, payload.TotalCatches, string(data))

	return prompt, nil
}
