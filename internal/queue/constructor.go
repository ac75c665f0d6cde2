package queue

import (
	"context"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
)

// Enricher fetches the optional product fields (shopping-site URL,
// rating, brand, review count) from an external source.
type Enricher interface {
	Enrich(ctx context.Context, product *models.Product) (*models.Enrichment, error)
}

type Queue struct {
	pr repository.ProductRepository
	en Enricher
}

func NewQueue(pr repository.ProductRepository, en Enricher) *Queue {
	return &Queue{
		pr: pr,
		en: en,
	}
}

const TaskTypeEnrichProduct = "product:enrich"

type EnrichProductPayload struct {
	ProductID string `json:"product_id"`
}
