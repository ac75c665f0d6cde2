package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
)

type stubEnricher struct {
	enrichment *models.Enrichment
	err        error
	calls      int
}

func (e *stubEnricher) Enrich(ctx context.Context, product *models.Product) (*models.Enrichment, error) {
	e.calls++
	return e.enrichment, e.err
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, repository.Migrate(context.Background(), db))
	return db
}

func enrichTask(t *testing.T, productID string) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(EnrichProductPayload{ProductID: productID})
	require.NoError(t, err)
	return asynq.NewTask(TaskTypeEnrichProduct, payload)
}

func TestHandleEnrichProductTask(t *testing.T) {
	db := newTestDB(t)
	pr := repository.NewProductRepository(db)
	ctx := context.Background()

	require.NoError(t, pr.Upsert(ctx, &models.Product{
		ID:          "p1",
		Name:        "Product p1",
		ReferralURL: "https://link.example/p1",
	}))

	enricher := &stubEnricher{enrichment: &models.Enrichment{
		ShoppingURL: "https://shop.example/p1",
		Rating:      4.2,
		Brand:       "Acme",
		ReviewCount: 55,
	}}
	q := NewQueue(pr, enricher)

	require.NoError(t, q.HandleEnrichProductTask(ctx, enrichTask(t, "p1")))

	got, err := pr.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Brand)
	assert.Equal(t, 4.2, got.Rating)
	assert.EqualValues(t, 55, got.ReviewCount)
	assert.True(t, got.Enriched())
}

func TestEnrichSkipsMissingProduct(t *testing.T) {
	db := newTestDB(t)
	pr := repository.NewProductRepository(db)
	enricher := &stubEnricher{}
	q := NewQueue(pr, enricher)

	require.NoError(t, q.EnrichProduct(context.Background(), "gone"))
	assert.Zero(t, enricher.calls, "no enrichment call for a vanished product")
}

func TestEnrichErrorPropagatesForRetry(t *testing.T) {
	db := newTestDB(t)
	pr := repository.NewProductRepository(db)
	ctx := context.Background()

	require.NoError(t, pr.Upsert(ctx, &models.Product{
		ID:          "p1",
		Name:        "Product p1",
		ReferralURL: "https://link.example/p1",
	}))

	q := NewQueue(pr, &stubEnricher{err: errors.New("upstream 503")})
	assert.Error(t, q.EnrichProduct(ctx, "p1"))
}

func TestNilEnrichmentLeavesProductUntouched(t *testing.T) {
	db := newTestDB(t)
	pr := repository.NewProductRepository(db)
	ctx := context.Background()

	require.NoError(t, pr.Upsert(ctx, &models.Product{
		ID:          "p1",
		Name:        "Product p1",
		ReferralURL: "https://link.example/p1",
	}))

	q := NewQueue(pr, NoopEnricher{})
	require.NoError(t, q.EnrichProduct(ctx, "p1"))

	got, err := pr.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, got.Enriched())
}
