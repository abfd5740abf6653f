package models

import "time"

// Water statuses for the admin moderation workflow.
const (
	WaterStatusPending  = "PENDING"
	WaterStatusApproved = "APPROVED"
	WaterStatusRejected = "REJECTED"
)

// Water represents a registered body of water with a coordinate.
// New waters are created in PENDING state and only become visible to other
// users once an admin approves them.
type Water struct {
	ID         string     `gorm:"primaryKey;size:40" json:"id"`
	Name       string     `gorm:"size:120;not null" json:"name"`
	Latitude   float64    `gorm:"type:decimal(9,6);not null" json:"latitude"`
	Longitude  float64    `gorm:"type:decimal(9,6);not null" json:"longitude"`
	Status     string     `gorm:"size:20;index;default:PENDING" json:"status"` // PENDING, APPROVED, REJECTED
	CreatedBy  string     `gorm:"size:64" json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedBy *string    `gorm:"size:64" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// TableName specifies the table name for Water
func (Water) TableName() string {
	return "waters"
}

// Lure is one entry in the shared, admin-curated lure catalog.
//
// Type is the legacy free-text category ("Jigg", "Wobbler", ...) kept for
// catches logged before the catalog got a dedicated Category field; readers
// fall back to it when Category is null.
type Lure struct {
	ID        string    `gorm:"primaryKey;size:80" json:"id"`
	Brand     string    `gorm:"size:60;not null" json:"brand"`
	Name      string    `gorm:"size:80;not null" json:"name"`
	Size      string    `gorm:"size:20" json:"size"`
	Color     string    `gorm:"size:40" json:"color"`
	Type      string    `gorm:"size:40" json:"type"`
	Category  *string   `gorm:"size:40" json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Lure
func (Lure) TableName() string {
	return "lures"
}

// Catch represents one logged fish catch tied to a water body.
// The history is immutable as far as the recommendation engine is concerned;
// every aggregation runs over the current snapshot of this table.
//
// Key Fields:
//   - CaughtAt: when the fish was caught, client-supplied and possibly
//     back-dated from photo metadata (indexed for ordered history queries)
//   - WeightG/LengthCm: optional measurements, validated against plausible
//     ranges on save (weight <= 30000 g, length <= 200 cm)
//   - Method: free-text technique, recorded only for soft-plastic lures
//   - WeatherCode/WeatherSummary/TemperatureC/PressureHpa: weather snapshot
//     captured at submission time, distinct from the live conditions fetched
//     at recommendation time
type Catch struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	WaterID        string    `gorm:"size:40;index;not null" json:"water_id"`
	CaughtAt       time.Time `gorm:"index;not null" json:"caught_at"`
	WeightG        *float64  `gorm:"type:decimal(8,1)" json:"weight_g,omitempty"`
	LengthCm       *float64  `gorm:"type:decimal(5,1)" json:"length_cm,omitempty"`
	LureID         *string   `gorm:"size:80" json:"lure_id,omitempty"`
	Lure           *Lure     `gorm:"foreignKey:LureID" json:"lure,omitempty"`
	Method         *string   `gorm:"size:80" json:"method,omitempty"`
	WeatherCode    *int      `json:"weather_code,omitempty"`
	WeatherSummary *string   `gorm:"size:80" json:"weather_summary,omitempty"`
	TemperatureC   *float64  `gorm:"type:decimal(5,1)" json:"temperature_c,omitempty"`
	PressureHpa    *float64  `gorm:"type:decimal(6,1)" json:"pressure_hpa,omitempty"`
	Notes          *string   `gorm:"size:500" json:"notes,omitempty"`
	PhotoURL       *string   `json:"photo_url,omitempty"`
	UserID         *string   `gorm:"size:64;index" json:"user_id,omitempty"`
	UserName       *string   `gorm:"size:64" json:"user_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for Catch
func (Catch) TableName() string {
	return "catches"
}

// RateLimitCounter is the transactional sliding-window record backing the
// per-user AI call cap. One row per salted counter key; the row is only ever
// read and written inside a single transaction.
type RateLimitCounter struct {
	Key               string `gorm:"column:counter_key;primaryKey;size:64" json:"counter_key"`
	Count             int    `gorm:"not null" json:"count"`
	WindowStartedAtMs int64  `gorm:"not null" json:"window_started_at_ms"`
}

// TableName specifies the table name for RateLimitCounter
func (RateLimitCounter) TableName() string {
	return "recommendation_rate_limits"
}

// CatchWebhook holds an outbound webhook registration for catch events.
type CatchWebhook struct {
	ID                int        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string     `gorm:"size:100;not null" json:"name"`
	URL               string     `gorm:"not null" json:"url"`
	Method            string     `gorm:"size:10;default:POST" json:"method"`
	AuthType          string     `gorm:"size:20" json:"auth_type"`
	AuthHeader        string     `gorm:"size:100" json:"auth_header"`
	AuthValue         string     `json:"auth_value"`
	WaterIDs          string     `json:"water_ids"` // Stored as JSON array; empty = all waters
	MinWeightG        *float64   `gorm:"type:decimal(8,1)" json:"min_weight_g,omitempty"`
	IsActive          bool       `gorm:"default:true" json:"is_active"`
	RetryCount        int        `gorm:"default:3" json:"retry_count"`
	RetryDelaySeconds int        `gorm:"default:5" json:"retry_delay_seconds"`
	TimeoutSeconds    int        `gorm:"default:10" json:"timeout_seconds"`
	CreatedAt         time.Time  `json:"created_at"`
	LastTriggeredAt   *time.Time `json:"last_triggered_at,omitempty"`
}

// TableName specifies the table name for CatchWebhook
func (CatchWebhook) TableName() string {
	return "catch_webhooks"
}

// CatchWebhookLog records one delivery attempt outcome.
type CatchWebhookLog struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	WebhookID      int       `gorm:"index;not null" json:"webhook_id"`
	CatchID        *int64    `json:"catch_id,omitempty"`
	TriggeredAt    time.Time `gorm:"index" json:"triggered_at"`
	Status         string    `gorm:"size:20" json:"status"` // SUCCESS, FAILED
	HTTPStatusCode *int      `json:"http_status_code,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	RetryAttempt   int       `json:"retry_attempt"`
}

// TableName specifies the table name for CatchWebhookLog
func (CatchWebhookLog) TableName() string {
	return "catch_webhook_logs"
}
