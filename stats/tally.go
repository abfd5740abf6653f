package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	models "perchfinder/database/models_pkg"
)

// counter tracks label frequencies while remembering first-seen order, so the
// top-K selection has a stable tie-break.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) Add(label string) {
	if _, ok := c.counts[label]; !ok {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

// Top returns up to n labels by descending count; ties keep first-seen order.
// Always returns a non-nil slice so payloads serialize as [] rather than null.
func (c *counter) Top(n int) []string {
	labels := make([]string, len(c.order))
	copy(labels, c.order)
	sort.SliceStable(labels, func(i, j int) bool {
		return c.counts[labels[i]] > c.counts[labels[j]]
	})
	if len(labels) > n {
		labels = labels[:n]
	}
	return labels
}

// Best returns the single highest-frequency label.
func (c *counter) Best() (string, bool) {
	top := c.Top(1)
	if len(top) == 0 {
		return "", false
	}
	return top[0], true
}

// tally accumulates every frequency table and numeric sum one catch at a time.
// Both the water-wide aggregation and the similar-conditions aggregation run
// through the same tally so their label derivation cannot drift apart.
type tally struct {
	lures      *counter
	categories *counter
	methods    *counter
	jigMethods *counter
	times      *counter
	weather    *counter

	tempSum  float64
	tempN    int
	pressSum float64
	pressN   int
}

func newTally() *tally {
	return &tally{
		lures:      newCounter(),
		categories: newCounter(),
		methods:    newCounter(),
		jigMethods: newCounter(),
		times:      newCounter(),
		weather:    newCounter(),
	}
}

func (t *tally) add(c *models.Catch) {
	if label, ok := lureLabel(c); ok {
		t.lures.Add(label)
	}
	if category, ok := lureCategory(c); ok {
		t.categories.Add(category)
	}
	if m, ok := catchMethod(c); ok {
		t.methods.Add(m)
		if isJigLure(c) {
			t.jigMethods.Add(m)
		}
	}
	t.times.Add(TimeBucket(c.CaughtAt))
	t.weather.Add(weatherLabel(c))

	if c.TemperatureC != nil {
		t.tempSum += *c.TemperatureC
		t.tempN++
	}
	if c.PressureHpa != nil {
		t.pressSum += *c.PressureHpa
		t.pressN++
	}
}

func (t *tally) avgTempC() *float64 {
	if t.tempN == 0 {
		return nil
	}
	v := math.Round(t.tempSum/float64(t.tempN)*10) / 10
	return &v
}

func (t *tally) avgPressureHpa() *float64 {
	if t.pressN == 0 {
		return nil
	}
	v := math.Round(t.pressSum / float64(t.pressN))
	return &v
}

func (t *tally) commonWeather() *string {
	if label, ok := t.weather.Best(); ok {
		return &label
	}
	return nil
}

// lureLabel builds the display label "{brand} {name} {color}" for a catch's
// lure, skipping blank parts.
func lureLabel(c *models.Catch) (string, bool) {
	if c.Lure == nil {
		return "", false
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{c.Lure.Brand, c.Lure.Name, c.Lure.Color} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

// lureCategory prefers the catalog Category field, falling back to the legacy
// free-text Type for lures predating the catalog split.
func lureCategory(c *models.Catch) (string, bool) {
	if c.Lure == nil {
		return "", false
	}
	if c.Lure.Category != nil {
		if category := strings.TrimSpace(*c.Lure.Category); category != "" {
			return category, true
		}
	}
	if t := strings.TrimSpace(c.Lure.Type); t != "" {
		return t, true
	}
	return "", false
}

func catchMethod(c *models.Catch) (string, bool) {
	if c.Method == nil {
		return "", false
	}
	m := strings.TrimSpace(*c.Method)
	return m, m != ""
}

// isJigLure reports whether the lure's category or legacy type mentions jig
// fishing ("jigg" in Swedish), which gates the jig-method tally.
func isJigLure(c *models.Catch) bool {
	if c.Lure == nil {
		return false
	}
	if c.Lure.Category != nil && strings.Contains(strings.ToLower(*c.Lure.Category), "jigg") {
		return true
	}
	return strings.Contains(strings.ToLower(c.Lure.Type), "jigg")
}

// weatherLabel resolves the display label for a catch's weather snapshot:
// the stored summary, else the fixed code table, else "Kod {n}", else "Okänt".
func weatherLabel(c *models.Catch) string {
	if c.WeatherSummary != nil {
		if s := strings.TrimSpace(*c.WeatherSummary); s != "" {
			return s
		}
	}
	if c.WeatherCode != nil {
		if label, ok := WeatherCodeLabel(*c.WeatherCode); ok {
			return label
		}
		return fmt.Sprintf("Kod %d", *c.WeatherCode)
	}
	return "Okänt"
}
