package models

import "time"

type Product struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	StoreName      string    `db:"store_name" json:"store_name"`
	Price          string    `db:"price" json:"price"`
	OriginalPrice  string    `db:"original_price" json:"original_price"`
	CommissionRate string    `db:"commission_rate" json:"commission_rate"`
	Status         string    `db:"status" json:"status"` // ON, OFF
	SourceURL      string    `db:"source_url" json:"source_url"`
	ReferralURL    string    `db:"referral_url" json:"referral_url"`
	ShoppingURL    string    `db:"shopping_url" json:"shopping_url"`
	Rating         float64   `db:"rating" json:"rating"`
	Brand          string    `db:"brand" json:"brand"`
	ReviewCount    int64     `db:"review_count" json:"review_count"`
	ClaimedBy      string    `db:"claimed_by" json:"-"`
	ClaimedUntil   time.Time `db:"claimed_until" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Enrichment holds the optional fields filled in asynchronously
// after a product is first discovered.
type Enrichment struct {
	ShoppingURL string  `json:"shopping_url"`
	Rating      float64 `json:"rating"`
	Brand       string  `json:"brand"`
	ReviewCount int64   `json:"review_count"`
}

const (
	ProductStatusOn  = "ON"
	ProductStatusOff = "OFF"
)

// Eligible reports whether the product can be posted about at all.
func (p *Product) Eligible() bool {
	return p.Status == ProductStatusOn && p.ReferralURL != ""
}

// Enriched reports whether the async enrichment fields were ever filled.
func (p *Product) Enriched() bool {
	return p.ShoppingURL != "" || p.Brand != ""
}
