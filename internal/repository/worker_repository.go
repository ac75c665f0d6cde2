package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
)

type WorkerRepository interface {
	GetByName(ctx context.Context, name string) (*models.Worker, error)
	Upsert(ctx context.Context, w *models.Worker) error
	Heartbeat(ctx context.Context, name string, t time.Time) error
	SetStatus(ctx context.Context, name, status string) error
	List(ctx context.Context) ([]*models.Worker, error)
	ListStale(ctx context.Context, olderThan time.Time) ([]*models.Worker, error)
}

type workerRepository struct {
	db *sql.DB
}

func NewWorkerRepository(db *sql.DB) WorkerRepository {
	return &workerRepository{db: db}
}

func (r *workerRepository) Upsert(ctx context.Context, w *models.Worker) error {
	query := `
		INSERT INTO workers (name, platform, status, last_heartbeat, created_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (name) DO UPDATE SET
			platform = EXCLUDED.platform,
			status = EXCLUDED.status,
			last_heartbeat = EXCLUDED.last_heartbeat
	`

	status := w.Status
	if status == "" {
		status = models.WorkerStatusIdle
	}

	_, err := r.db.ExecContext(ctx, query, w.Name, w.Platform, status, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *workerRepository) GetByName(ctx context.Context, name string) (*models.Worker, error) {
	query := `SELECT name, platform, status, last_heartbeat, created_at FROM workers WHERE name = $1`
	row := r.db.QueryRowContext(ctx, query, name)

	var w models.Worker
	err := row.Scan(&w.Name, &w.Platform, &w.Status, &w.LastHeartbeat, &w.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &w, nil
}

func (r *workerRepository) Heartbeat(ctx context.Context, name string, t time.Time) error {
	query := `UPDATE workers SET last_heartbeat = $1 WHERE name = $2`
	_, err := r.db.ExecContext(ctx, query, t, name)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *workerRepository) SetStatus(ctx context.Context, name, status string) error {
	query := `UPDATE workers SET status = $1 WHERE name = $2`
	_, err := r.db.ExecContext(ctx, query, status, name)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *workerRepository) List(ctx context.Context) ([]*models.Worker, error) {
	query := `SELECT name, platform, status, last_heartbeat, created_at FROM workers ORDER BY name`
	return r.queryWorkers(ctx, query)
}

func (r *workerRepository) ListStale(ctx context.Context, olderThan time.Time) ([]*models.Worker, error) {
	query := `SELECT name, platform, status, last_heartbeat, created_at FROM workers WHERE last_heartbeat < $1`
	return r.queryWorkers(ctx, query, olderThan)
}

func (r *workerRepository) queryWorkers(ctx context.Context, query string, args ...any) ([]*models.Worker, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var workers []*models.Worker
	for rows.Next() {
		var w models.Worker
		err := rows.Scan(&w.Name, &w.Platform, &w.Status, &w.LastHeartbeat, &w.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		workers = append(workers, &w)
	}
	return workers, rows.Err()
}
