package models

import "time"

// PostRecord is one posting attempt. Rows are append-only: corrections
// happen via new records, never edits.
type PostRecord struct {
	ID           string    `db:"id" json:"id"`
	ProductID    string    `db:"product_id" json:"product_id"`
	WorkerID     string    `db:"worker_id" json:"worker_id"`
	Platform     string    `db:"platform" json:"platform"`
	Success      bool      `db:"success" json:"success"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PlatformCafe = "cafe"
	PlatformBlog = "blog"
)

var Platforms = []string{PlatformCafe, PlatformBlog}
