package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, repository.Migrate(context.Background(), db))
	return db
}

func seedProduct(t *testing.T, pr repository.ProductRepository, id string) *models.Product {
	t.Helper()

	p := &models.Product{
		ID:          id,
		Name:        "Product " + id,
		StoreName:   "store",
		Price:       "19900",
		ReferralURL: "https://link.example/" + id,
		Status:      models.ProductStatusOn,
	}
	require.NoError(t, pr.Upsert(context.Background(), p))
	return p
}

// Stub collaborators shared across the service tests.

type stubGenerator struct {
	content *Content
	err     error
	panics  bool
}

func (g stubGenerator) Generate(ctx context.Context, product *models.Product, platform string) (*Content, error) {
	if g.panics {
		panic("generator exploded")
	}
	return g.content, g.err
}

type stubAcquirer struct {
	paths []string
	err   error
}

func (a stubAcquirer) Acquire(ctx context.Context, product *models.Product) ([]string, error) {
	return a.paths, a.err
}

type stubPoster struct {
	calls []*Post
	err   error
}

func (p *stubPoster) Publish(ctx context.Context, post *Post) error {
	p.calls = append(p.calls, post)
	return p.err
}

type failingQuotaRepo struct{}

var errDBDown = errors.New("connection refused")

func (failingQuotaRepo) Get(ctx context.Context, platform string) (*models.QuotaCounter, error) {
	return nil, errDBDown
}

func (failingQuotaRepo) Increment(ctx context.Context, platform string, n, limit int, today string, now time.Time) (*models.QuotaCounter, error) {
	return nil, errDBDown
}

func (failingQuotaRepo) CompleteRun(ctx context.Context, platform string, now time.Time) error {
	return errDBDown
}
