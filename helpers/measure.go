package helpers

import (
	"fmt"
	"strings"
)

// FormatWeight formats a weight in grams for display. Kilogram values use a
// Swedish decimal comma, e.g. 1250 -> "1,25 kg".
func FormatWeight(grams float64) string {
	if grams >= 1000 {
		kg := fmt.Sprintf("%.2f", grams/1000)
		return strings.Replace(kg, ".", ",", 1) + " kg"
	}
	return fmt.Sprintf("%.0f g", grams)
}

// FormatLength formats a length in centimeters for display.
func FormatLength(cm float64) string {
	formatted := fmt.Sprintf("%.1f", cm)
	formatted = strings.TrimSuffix(formatted, ".0")
	return strings.Replace(formatted, ".", ",", 1) + " cm"
}
