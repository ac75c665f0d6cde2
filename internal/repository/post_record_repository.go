package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/maheshrc27/autopost/internal/models"
)

// PostRecordRepository is the append-only posting ledger. Rows are never
// updated or deleted.
type PostRecordRepository interface {
	Create(ctx context.Context, rec *models.PostRecord) (string, error)
	SuccessCounts(ctx context.Context, platform string) (map[string]int, error)
	CountSuccessSince(ctx context.Context, platform string, since time.Time) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*models.PostRecord, error)
}

type postRecordRepository struct {
	db *sql.DB
}

func NewPostRecordRepository(db *sql.DB) PostRecordRepository {
	return &postRecordRepository{db: db}
}

func (r *postRecordRepository) Create(ctx context.Context, rec *models.PostRecord) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var workerID sql.NullString
	if rec.WorkerID != "" {
		workerID = sql.NullString{String: rec.WorkerID, Valid: true}
	}

	query := `
		INSERT INTO posts (id, product_id, worker_id, platform, success, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query, id, rec.ProductID, workerID, rec.Platform,
		rec.Success, rec.ErrorMessage, createdAt)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	rec.ID = id
	rec.CreatedAt = createdAt
	return id, nil
}

// SuccessCounts returns successful-post counts per product for one
// platform. Products with no successful posts are absent from the map.
func (r *postRecordRepository) SuccessCounts(ctx context.Context, platform string) (map[string]int, error) {
	query := `
		SELECT product_id, COUNT(*)
		FROM posts
		WHERE platform = $1 AND success = $2
		GROUP BY product_id
	`
	rows, err := r.db.QueryContext(ctx, query, platform, true)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var productID string
		var n int
		if err := rows.Scan(&productID, &n); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		counts[productID] = n
	}
	return counts, rows.Err()
}

func (r *postRecordRepository) CountSuccessSince(ctx context.Context, platform string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM posts WHERE platform = $1 AND success = $2 AND created_at >= $3`

	var n int
	err := r.db.QueryRowContext(ctx, query, platform, true, since).Scan(&n)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return n, nil
}

func (r *postRecordRepository) ListRecent(ctx context.Context, limit int) ([]*models.PostRecord, error) {
	query := `
		SELECT id, product_id, worker_id, platform, success, error_message, created_at
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var recs []*models.PostRecord
	for rows.Next() {
		var rec models.PostRecord
		var workerID sql.NullString
		err := rows.Scan(&rec.ID, &rec.ProductID, &workerID, &rec.Platform,
			&rec.Success, &rec.ErrorMessage, &rec.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		rec.WorkerID = workerID.String
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}
