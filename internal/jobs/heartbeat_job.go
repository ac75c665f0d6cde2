package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/autopost/internal/repository"
)

// HeartbeatJob keeps this worker's registry row fresh and releases
// product claims held by workers whose heartbeat went stale.
type HeartbeatJob struct {
	wr         repository.WorkerRepository
	pr         repository.ProductRepository
	workerName string
	staleAfter time.Duration
}

func NewHeartbeatJob(
	wr repository.WorkerRepository,
	pr repository.ProductRepository,
	workerName string,
	staleAfter time.Duration) *HeartbeatJob {
	return &HeartbeatJob{
		wr:         wr,
		pr:         pr,
		workerName: workerName,
		staleAfter: staleAfter,
	}
}

func (j *HeartbeatJob) Beat() {
	ctx := context.Background()

	if err := j.wr.Heartbeat(ctx, j.workerName, time.Now()); err != nil {
		slog.Info(err.Error())
	}
}

// ReapStaleClaims frees products claimed by workers that stopped
// heartbeating, so abandoned work becomes selectable again before the
// claim TTL runs out on its own.
func (j *HeartbeatJob) ReapStaleClaims() {
	ctx := context.Background()

	stale, err := j.wr.ListStale(ctx, time.Now().Add(-j.staleAfter))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, w := range stale {
		if w.Name == j.workerName {
			continue
		}
		released, err := j.pr.ReleaseClaimsBy(ctx, w.Name)
		if err != nil {
			slog.Info(err.Error())
			continue
		}
		if released > 0 {
			slog.Info("released stale claims", "worker", w.Name, "count", released)
		}
	}
}
