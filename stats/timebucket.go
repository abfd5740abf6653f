package stats

import "time"

// TimeBucket maps an hour of day into one of four fixed day segments.
func TimeBucket(t time.Time) string {
	hour := t.Hour()
	switch {
	case hour >= 5 && hour < 10:
		return "Morgon"
	case hour >= 10 && hour < 16:
		return "Dag"
	case hour >= 16 && hour < 22:
		return "Kväll"
	default:
		return "Natt"
	}
}
