package domain

import "time"

// RawCatalogEntry mirrors one product object from the external catalog
// response. Fields are pointers so that absence can be told apart from a
// zero value during batch validation.
type RawCatalogEntry struct {
	ID                 *int64   `json:"id"`
	Title              *string  `json:"title"`
	Brand              *string  `json:"brand"`
	Category           *string  `json:"category"`
	Price              *float64 `json:"price"`
	DiscountPercentage *float64 `json:"discountPercentage"`
	Rating             *float64 `json:"rating"`
	Stock              *int64   `json:"stock"`
}

// CompetitorPriceRecord is one captured competitor price snapshot. Records
// are immutable once written; all records of a batch share one capture
// timestamp.
type CompetitorPriceRecord struct {
	ProductID          int64     `json:"productId"`
	ProductName        string    `json:"productName"`
	Brand              string    `json:"brand"`
	Category           string    `json:"category"`
	Price              float64   `json:"price"`
	DiscountPercentage float64   `json:"discountPercentage"`
	Rating             float64   `json:"rating"`
	Stock              int64     `json:"stock"`
	CapturedAt         time.Time `json:"capturedAt"`
	Source             string    `json:"source"`
}

// ProductBid is one CPC adjustment computed for a product.
type ProductBid struct {
	ID           string    `json:"id"`
	ProductID    int64     `json:"productId"`
	CurrentCPC   float64   `json:"currentCpc"`
	TargetROAS   float64   `json:"targetRoas"`
	AdjustedCPC  float64   `json:"adjustedCpc"`
	CalculatedAt time.Time `json:"calculatedAt"`
}
