package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/service"
)

// StatusHandler exposes read-only observability endpoints. All posting
// state mutation happens inside the worker loop, never through HTTP.
type StatusHandler struct {
	wr       repository.WorkerRepository
	lr       repository.PostRecordRepository
	quota    service.QuotaTracker
	platform string
}

func NewStatusHandler(wr repository.WorkerRepository, lr repository.PostRecordRepository, quota service.QuotaTracker, platform string) *StatusHandler {
	return &StatusHandler{wr: wr, lr: lr, quota: quota, platform: platform}
}

func (h *StatusHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *StatusHandler) ListWorkers(c *fiber.Ctx) error {
	workers, err := h.wr.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list workers",
		})
	}
	return c.JSON(workers)
}

func (h *StatusHandler) LedgerSummary(c *fiber.Ctx) error {
	summary := fiber.Map{}
	for _, platform := range models.Platforms {
		counts, err := h.lr.SuccessCounts(c.Context(), platform)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unable to aggregate ledger",
			})
		}
		summary[platform] = counts
	}
	return c.JSON(summary)
}

func (h *StatusHandler) RecentRecords(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	recs, err := h.lr.ListRecent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read ledger",
		})
	}
	return c.JSON(recs)
}

// QuotaStatus pairs the counter state with the ledger's own view of
// today, so counter drift is visible from the outside.
func (h *StatusHandler) QuotaStatus(c *fiber.Ctx) error {
	status := h.quota.CheckDailyLimit(c.Context())

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	posted, err := h.lr.CountSuccessSince(c.Context(), h.platform, midnight)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read ledger",
		})
	}

	return c.JSON(fiber.Map{
		"platform":     h.platform,
		"current":      status.Current,
		"limit":        status.Limit,
		"reached":      status.Reached,
		"posted_today": posted,
	})
}
