package models

import "time"

// QuotaCounter tracks the daily post count for one platform. LastReset
// is the local calendar day ("2006-01-02") the counter was last reset on.
type QuotaCounter struct {
	Platform      string    `db:"platform" json:"platform"`
	Count         int       `db:"count" json:"count"`
	DailyLimit    int       `db:"daily_limit" json:"daily_limit"`
	LastReset     string    `db:"last_reset" json:"last_reset"`
	RunsCompleted int       `db:"runs_completed" json:"runs_completed"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

const DateLayout = "2006-01-02"
