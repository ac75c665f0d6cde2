package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
)

type QuotaRepository interface {
	Get(ctx context.Context, platform string) (*models.QuotaCounter, error)
	Increment(ctx context.Context, platform string, n, limit int, today string, now time.Time) (*models.QuotaCounter, error)
	CompleteRun(ctx context.Context, platform string, now time.Time) error
}

type quotaRepository struct {
	db *sql.DB
}

func NewQuotaRepository(db *sql.DB) QuotaRepository {
	return &quotaRepository{db: db}
}

func (r *quotaRepository) Get(ctx context.Context, platform string) (*models.QuotaCounter, error) {
	query := `
		SELECT platform, count, daily_limit, last_reset, runs_completed, updated_at
		FROM quota_counters
		WHERE platform = $1
	`
	row := r.db.QueryRowContext(ctx, query, platform)

	var qc models.QuotaCounter
	err := row.Scan(&qc.Platform, &qc.Count, &qc.DailyLimit, &qc.LastReset, &qc.RunsCompleted, &qc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &qc, nil
}

// ErrLimitReached is returned when an increment would push the counter
// past the daily limit. The count is left untouched.
var ErrLimitReached = errors.New("daily post limit reached")

// Increment adds n to the platform counter, resetting it first when the
// stored last-reset day differs from today. The read-modify-write runs in
// one transaction with a last_reset-guarded update, so two workers racing
// across midnight cannot both keep the stale count, and the limit check
// happens on the in-transaction count, so two workers that both saw
// "below limit" cannot both push past it.
func (r *quotaRepository) Increment(ctx context.Context, platform string, n, limit int, today string, now time.Time) (*models.QuotaCounter, error) {
	const maxAttempts = 3

	for attempt := 0; attempt < maxAttempts; attempt++ {
		qc, err := r.tryIncrement(ctx, platform, n, limit, today, now)
		if err == nil {
			return qc, nil
		}
		if !errors.Is(err, errCounterChanged) {
			return nil, err
		}
	}
	return nil, errCounterChanged
}

var errCounterChanged = errors.New("quota counter changed concurrently")

func (r *quotaRepository) tryIncrement(ctx context.Context, platform string, n, limit int, today string, now time.Time) (*models.QuotaCounter, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT count, daily_limit, last_reset, runs_completed
		FROM quota_counters
		WHERE platform = $1
	`
	var qc models.QuotaCounter
	qc.Platform = platform
	err = tx.QueryRowContext(ctx, query, platform).Scan(&qc.Count, &qc.DailyLimit, &qc.LastReset, &qc.RunsCompleted)
	if err == sql.ErrNoRows {
		if limit > 0 && n > limit {
			return nil, ErrLimitReached
		}
		insert := `
			INSERT INTO quota_counters (platform, count, daily_limit, last_reset, runs_completed, updated_at)
			VALUES ($1, $2, $3, $4, 0, $5)
		`
		if _, err := tx.ExecContext(ctx, insert, platform, n, limit, today, now); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		qc.Count = n
		qc.DailyLimit = limit
		qc.LastReset = today
		qc.UpdatedAt = now
		return &qc, nil
	}
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	prevReset := qc.LastReset
	prevCount := qc.Count
	if qc.LastReset != today {
		// Day rollover: the triggering increment starts the new day's count.
		qc.Count = n
		qc.LastReset = today
	} else {
		qc.Count += n
	}
	qc.DailyLimit = limit

	if limit > 0 && qc.Count > limit {
		return nil, ErrLimitReached
	}

	update := `
		UPDATE quota_counters
		SET count = $1, daily_limit = $2, last_reset = $3, updated_at = $4
		WHERE platform = $5 AND last_reset = $6 AND count = $7
	`
	res, err := tx.ExecContext(ctx, update, qc.Count, limit, qc.LastReset, now, platform, prevReset, prevCount)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, errCounterChanged
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	qc.UpdatedAt = now
	return &qc, nil
}

func (r *quotaRepository) CompleteRun(ctx context.Context, platform string, now time.Time) error {
	query := `
		UPDATE quota_counters
		SET runs_completed = runs_completed + 1, updated_at = $1
		WHERE platform = $2
	`
	res, err := r.db.ExecContext(ctx, query, now, platform)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		insert := `
			INSERT INTO quota_counters (platform, count, daily_limit, last_reset, runs_completed, updated_at)
			VALUES ($1, 0, 0, $2, 1, $3)
		`
		if _, err := r.db.ExecContext(ctx, insert, platform, now.Format(models.DateLayout), now); err != nil {
			slog.Info(err.Error())
			return err
		}
	}
	return nil
}
