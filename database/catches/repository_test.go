package catches

import (
	"testing"
	"time"

	models "perchfinder/database/models_pkg"
)

func floatPtr(v float64) *float64 { return &v }

func validCatch() *models.Catch {
	return &models.Catch{
		WaterID:  "w1",
		CaughtAt: time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Catch)
		wantErr error
	}{
		{"valid minimal", func(c *models.Catch) {}, nil},
		{"valid with measurements", func(c *models.Catch) {
			c.WeightG = floatPtr(1250)
			c.LengthCm = floatPtr(42)
		}, nil},
		{"missing water", func(c *models.Catch) { c.WaterID = "" }, ErrMissingWater},
		{"zero timestamp", func(c *models.Catch) { c.CaughtAt = time.Time{} }, ErrInvalidCaughtAt},
		{"negative weight", func(c *models.Catch) { c.WeightG = floatPtr(-1) }, ErrInvalidWeight},
		{"implausible weight", func(c *models.Catch) { c.WeightG = floatPtr(30001) }, ErrInvalidWeight},
		{"boundary weight ok", func(c *models.Catch) { c.WeightG = floatPtr(30000) }, nil},
		{"implausible length", func(c *models.Catch) { c.LengthCm = floatPtr(200.5) }, ErrInvalidLength},
		{"boundary length ok", func(c *models.Catch) { c.LengthCm = floatPtr(200) }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCatch()
			tt.mutate(c)
			if err := Validate(c); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
