package stats

// WeatherCodeLabel maps a WMO weather code to its Swedish display label.
// Unmapped codes return ok=false; callers fall back to "Kod {n}".
func WeatherCodeLabel(code int) (string, bool) {
	switch code {
	case 0:
		return "Klart", true
	case 1, 2:
		return "Mest klart", true
	case 3:
		return "Molnigt", true
	case 45, 48:
		return "Dimmigt", true
	case 51, 53, 55:
		return "Duggregn", true
	case 56, 57:
		return "Underkylt duggregn", true
	case 61, 63, 65:
		return "Regn", true
	case 66, 67:
		return "Underkylt regn", true
	case 71, 73, 75:
		return "Snöfall", true
	case 77:
		return "Snökorn", true
	case 80, 81, 82:
		return "Skurar", true
	case 85, 86:
		return "Snöbyar", true
	case 95, 96, 99:
		return "Åska", true
	}
	return "", false
}
