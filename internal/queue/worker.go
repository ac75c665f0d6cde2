package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/maheshrc27/autopost/internal/models"
)

func (q *Queue) HandleEnrichProductTask(ctx context.Context, task *asynq.Task) error {
	var payload EnrichProductPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}
	return q.EnrichProduct(ctx, payload.ProductID)
}

func (q *Queue) EnrichProduct(ctx context.Context, productID string) error {
	product, err := q.pr.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		slog.Info("enrichment skipped, product gone", "product_id", productID)
		return nil
	}

	enrichment, err := q.en.Enrich(ctx, product)
	if err != nil {
		// Returning the error lets asynq retry with its own policy.
		slog.Info(err.Error())
		return err
	}
	if enrichment == nil {
		return nil
	}

	return q.pr.UpdateEnrichment(ctx, productID, enrichment)
}

// NoopEnricher is the default when no enrichment source is configured.
type NoopEnricher struct{}

func (NoopEnricher) Enrich(ctx context.Context, _ *models.Product) (*models.Enrichment, error) {
	return nil, nil
}
