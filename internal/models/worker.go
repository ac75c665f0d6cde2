package models

import "time"

type Worker struct {
	Name          string    `db:"name" json:"name"`
	Platform      string    `db:"platform" json:"platform"`
	Status        string    `db:"status" json:"status"` // idle, active, testing
	LastHeartbeat time.Time `db:"last_heartbeat" json:"last_heartbeat"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

const (
	WorkerStatusIdle    = "idle"
	WorkerStatusActive  = "active"
	WorkerStatusTesting = "testing"
)
