package queue

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

func EnqueueEnrichment(asynqClient *asynq.Client, payload EnrichProductPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeEnrichProduct, taskPayload)

	// Unique keeps a burst of cycles from piling up duplicate enrichment
	// work for the same product.
	_, err = asynqClient.Enqueue(task, asynq.Unique(time.Hour))
	if err != nil {
		return err
	}

	slog.Info("enrichment task scheduled", "product_id", payload.ProductID)
	return nil
}
