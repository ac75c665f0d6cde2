package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
)

type QuotaStatus struct {
	Current int  `json:"current"`
	Limit   int  `json:"limit"`
	Reached bool `json:"reached"`
}

// QuotaTracker enforces the per-platform daily post ceiling. The counter
// resets at the first operation observed after local midnight.
type QuotaTracker interface {
	CheckDailyLimit(ctx context.Context) QuotaStatus
	IncrementDailyIssuance(ctx context.Context, n int) error
	CompleteDailyIssuance(ctx context.Context) error
}

type quotaService struct {
	qr       repository.QuotaRepository
	platform string
	limit    int
	now      func() time.Time
}

func NewQuotaService(qr repository.QuotaRepository, platform string, limit int) QuotaTracker {
	return &quotaService{
		qr:       qr,
		platform: platform,
		limit:    limit,
		now:      time.Now,
	}
}

// NewQuotaServiceWithClock exists so tests can simulate day rollover.
func NewQuotaServiceWithClock(qr repository.QuotaRepository, platform string, limit int, now func() time.Time) QuotaTracker {
	return &quotaService{qr: qr, platform: platform, limit: limit, now: now}
}

// CheckDailyLimit fails closed: when the persistence layer is unreachable
// it reports the limit as reached rather than risking a quota overrun.
func (s *quotaService) CheckDailyLimit(ctx context.Context) QuotaStatus {
	qc, err := s.qr.Get(ctx, s.platform)
	if err != nil {
		slog.Error("quota check failed, treating limit as reached", "platform", s.platform, "error", err)
		return QuotaStatus{Current: s.limit, Limit: s.limit, Reached: true}
	}

	current := 0
	if qc != nil && qc.LastReset == s.today() {
		current = qc.Count
	}
	return QuotaStatus{
		Current: current,
		Limit:   s.limit,
		Reached: current >= s.limit,
	}
}

// IncrementDailyIssuance adds to today's count. The ceiling is enforced
// inside the store's transaction: when another worker already took the
// last slot this returns repository.ErrLimitReached and the count stays.
func (s *quotaService) IncrementDailyIssuance(ctx context.Context, n int) error {
	now := s.now()
	_, err := s.qr.Increment(ctx, s.platform, n, s.limit, now.Format(models.DateLayout), now)
	return err
}

// CompleteDailyIssuance marks a run as finished. Audit only, it is never
// consulted by the limit check.
func (s *quotaService) CompleteDailyIssuance(ctx context.Context) error {
	return s.qr.CompleteRun(ctx, s.platform, s.now())
}

func (s *quotaService) today() string {
	return s.now().Format(models.DateLayout)
}
