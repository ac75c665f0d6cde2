package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maheshrc27/autopost/internal/models"
)

func TestProductUpsertIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	pr := NewProductRepository(db)
	ctx := context.Background()

	seedProduct(t, pr, "p1")

	updated := &models.Product{
		ID:          "p1",
		Name:        "Renamed",
		Price:       "24900",
		ReferralURL: "https://link.example/p1",
		Status:      models.ProductStatusOn,
	}
	require.NoError(t, pr.Upsert(ctx, updated))

	got, err := pr.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "24900", got.Price)
}

func TestProductUpsertKeepsEnrichment(t *testing.T) {
	db := newTestDB(t)
	pr := NewProductRepository(db)
	ctx := context.Background()

	seedProduct(t, pr, "p1")
	require.NoError(t, pr.UpdateEnrichment(ctx, "p1", &models.Enrichment{
		ShoppingURL: "https://shop.example/p1",
		Rating:      4.5,
		Brand:       "Acme",
		ReviewCount: 120,
	}))

	// A re-crawl upsert must not wipe the async-filled fields.
	seedProduct(t, pr, "p1")

	got, err := pr.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Brand)
	assert.Equal(t, 4.5, got.Rating)
	assert.True(t, got.Enriched())
}

func TestGetByIDMissing(t *testing.T) {
	db := newTestDB(t)
	pr := NewProductRepository(db)

	got, err := pr.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListEligibleFiltersStatusAndReferral(t *testing.T) {
	db := newTestDB(t)
	pr := NewProductRepository(db)
	ctx := context.Background()

	seedProduct(t, pr, "on")

	off := &models.Product{ID: "off", Name: "off", ReferralURL: "https://x", Status: models.ProductStatusOff}
	require.NoError(t, pr.Upsert(ctx, off))

	noLink := &models.Product{ID: "nolink", Name: "nolink", Status: models.ProductStatusOn}
	require.NoError(t, pr.Upsert(ctx, noLink))

	eligible, err := pr.ListEligible(ctx)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "on", eligible[0].ID)
}

func TestClaimIsExclusiveUntilExpiry(t *testing.T) {
	db := newTestDB(t)
	pr := NewProductRepository(db)
	ctx := context.Background()

	seedProduct(t, pr, "p1")
	now := time.Now()

	ok, err := pr.Claim(ctx, "p1", "worker-a", now, 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = pr.Claim(ctx, "p1", "worker-b", now, 10*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "live claim must not be stolen")

	// After the TTL elapses the claim is up for grabs again.
	later := now.Add(11 * time.Minute)
	ok, err = pr.Claim(ctx, "p1", "worker-b", later, 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseClaimOnlyByOwner(t *testing.T) {
	db := newTestDB(t)
	pr := NewProductRepository(db)
	ctx := context.Background()

	seedProduct(t, pr, "p1")
	now := time.Now()

	ok, err := pr.Claim(ctx, "p1", "worker-a", now, 10*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, pr.ReleaseClaim(ctx, "p1", "worker-b"))
	ok, err = pr.Claim(ctx, "p1", "worker-b", now, 10*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "release by a non-owner must be a no-op")

	require.NoError(t, pr.ReleaseClaim(ctx, "p1", "worker-a"))
	ok, err = pr.Claim(ctx, "p1", "worker-b", now, 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseClaimsBy(t *testing.T) {
	db := newTestDB(t)
	pr := NewProductRepository(db)
	ctx := context.Background()

	seedProduct(t, pr, "p1")
	seedProduct(t, pr, "p2")
	now := time.Now()

	for _, id := range []string{"p1", "p2"} {
		ok, err := pr.Claim(ctx, id, "worker-a", now, 10*time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
	}

	released, err := pr.ReleaseClaimsBy(ctx, "worker-a")
	require.NoError(t, err)
	assert.EqualValues(t, 2, released)

	ok, err := pr.Claim(ctx, "p1", "worker-b", now, 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
