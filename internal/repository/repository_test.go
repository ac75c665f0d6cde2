package repository

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/maheshrc27/autopost/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func seedProduct(t *testing.T, pr ProductRepository, id string) *models.Product {
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
