package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Dashboard runs the read-only admin/moderation queries over a plain
// database/sql handle. Kept separate from the GORM connection so the
// hand-written aggregate SQL stays visible and tunable.
type Dashboard struct {
	conn *sql.DB
}

// NewDashboard opens the dashboard connection.
func NewDashboard(host, port, user, password, dbname string) (*Dashboard, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Dashboard traffic is light; a small pool is plenty.
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)
	conn.SetConnMaxIdleTime(2 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Dashboard database connection established")

	return &Dashboard{conn: conn}, nil
}

// WaterActivity summarizes logged activity for one approved water.
type WaterActivity struct {
	WaterID     string     `json:"water_id"`
	WaterName   string     `json:"water_name"`
	CatchCount  int64      `json:"catch_count"`
	LastCatchAt *time.Time `json:"last_catch_at,omitempty"`
}

// WaterActivity returns the most active approved waters, busiest first.
func (d *Dashboard) WaterActivity(ctx context.Context, limit int) ([]WaterActivity, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT w.id, w.name, COUNT(c.id) AS catch_count, MAX(c.caught_at) AS last_catch_at
		FROM waters w
		LEFT JOIN catches c ON c.water_id = w.id
		WHERE w.status = 'APPROVED'
		GROUP BY w.id, w.name
		ORDER BY catch_count DESC, w.name ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query water activity: %w", err)
	}
	defer rows.Close()

	var result []WaterActivity
	for rows.Next() {
		var wa WaterActivity
		var lastCatch sql.NullTime
		if err := rows.Scan(&wa.WaterID, &wa.WaterName, &wa.CatchCount, &lastCatch); err != nil {
			return nil, fmt.Errorf("failed to scan water activity row: %w", err)
		}
		if lastCatch.Valid {
			wa.LastCatchAt = &lastCatch.Time
		}
		result = append(result, wa)
	}
	return result, rows.Err()
}

// PendingWaterCount returns how many submitted waters await moderation.
func (d *Dashboard) PendingWaterCount(ctx context.Context) (int64, error) {
	var count int64
	err := d.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM waters WHERE status = 'PENDING'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending waters: %w", err)
	}
	return count, nil
}

// CatchCountSince returns the number of catches logged after the given time.
func (d *Dashboard) CatchCountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := d.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM catches WHERE created_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent catches: %w", err)
	}
	return count, nil
}

// Close closes the dashboard connection.
func (d *Dashboard) Close() error {
	if d.conn != nil {
		log.Println("📡 Closing dashboard database connection...")
		return d.conn.Close()
	}
	return nil
}
