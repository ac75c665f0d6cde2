package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
)

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Upsert(ctx context.Context, p *models.Product) error
	UpdateEnrichment(ctx context.Context, id string, e *models.Enrichment) error
	SetStatus(ctx context.Context, id, status string) error
	ListEligible(ctx context.Context) ([]*models.Product, error)
	Claim(ctx context.Context, id, workerName string, now time.Time, ttl time.Duration) (bool, error)
	ReleaseClaim(ctx context.Context, id, workerName string) error
	ReleaseClaimsBy(ctx context.Context, workerName string) (int64, error)
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, store_name, price, original_price, commission_rate,
	status, source_url, referral_url, shopping_url, rating, brand, review_count,
	claimed_by, claimed_until, created_at, updated_at`

func (r *productRepository) Upsert(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (id, name, store_name, price, original_price, commission_rate,
			status, source_url, referral_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			store_name = EXCLUDED.store_name,
			price = EXCLUDED.price,
			original_price = EXCLUDED.original_price,
			commission_rate = EXCLUDED.commission_rate,
			status = EXCLUDED.status,
			source_url = EXCLUDED.source_url,
			referral_url = EXCLUDED.referral_url,
			updated_at = EXCLUDED.updated_at
	`

	status := p.Status
	if status == "" {
		status = models.ProductStatusOn
	}

	_, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.StoreName, p.Price,
		p.OriginalPrice, p.CommissionRate, status, p.SourceURL, p.ReferralURL, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return p, nil
}

func (r *productRepository) ListEligible(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE status = $1 AND referral_url <> ''`

	rows, err := r.db.QueryContext(ctx, query, models.ProductStatusOn)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepository) UpdateEnrichment(ctx context.Context, id string, e *models.Enrichment) error {
	query := `
		UPDATE products
		SET shopping_url = $1,
			rating = $2,
			brand = $3,
			review_count = $4,
			updated_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query, e.ShoppingURL, e.Rating, e.Brand, e.ReviewCount, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *productRepository) SetStatus(ctx context.Context, id, status string) error {
	query := `UPDATE products SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Claim reserves the product for one worker with a compare-and-swap on
// claimed_until. Returns false when another worker holds a live claim.
func (r *productRepository) Claim(ctx context.Context, id, workerName string, now time.Time, ttl time.Duration) (bool, error) {
	query := `
		UPDATE products
		SET claimed_by = $1, claimed_until = $2
		WHERE id = $3 AND (claimed_until IS NULL OR claimed_until < $4)
	`
	res, err := r.db.ExecContext(ctx, query, workerName, now.Add(ttl), id, now)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *productRepository) ReleaseClaim(ctx context.Context, id, workerName string) error {
	query := `
		UPDATE products
		SET claimed_by = '', claimed_until = NULL
		WHERE id = $1 AND claimed_by = $2
	`
	_, err := r.db.ExecContext(ctx, query, id, workerName)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *productRepository) ReleaseClaimsBy(ctx context.Context, workerName string) (int64, error) {
	query := `
		UPDATE products
		SET claimed_by = '', claimed_until = NULL
		WHERE claimed_by = $1
	`
	res, err := r.db.ExecContext(ctx, query, workerName)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var claimedUntil sql.NullTime
	err := row.Scan(&p.ID, &p.Name, &p.StoreName, &p.Price, &p.OriginalPrice,
		&p.CommissionRate, &p.Status, &p.SourceURL, &p.ReferralURL, &p.ShoppingURL,
		&p.Rating, &p.Brand, &p.ReviewCount, &p.ClaimedBy, &claimedUntil,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if claimedUntil.Valid {
		p.ClaimedUntil = claimedUntil.Time
	}
	return &p, nil
}
