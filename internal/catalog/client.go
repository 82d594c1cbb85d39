package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bidwise/competitor-price-ingest/internal/config"
	"github.com/bidwise/competitor-price-ingest/internal/domain"
)

// sourceTag marks every record produced by this integration.
const sourceTag = "dummyjson"

var (
	// ErrTransient indicates a network-level failure or timeout. The caller
	// does not retry; the next scheduled tick does.
	ErrTransient = errors.New("catalog: transient fetch error")

	// ErrMalformedResponse indicates the catalog payload violated the
	// expected shape. The whole batch is dropped.
	ErrMalformedResponse = errors.New("catalog: malformed response")
)

// Client fetches one page of products from the external catalog endpoint.
type Client struct {
	baseURL string
	limit   int
	http    *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL: cfg.CatalogBaseURL,
		limit:   cfg.FetchLimit,
		http:    &http.Client{Timeout: cfg.FetchTimeout},
	}
}

// catalogResponse wraps the catalog payload. Products is a pointer so a
// missing "products" key can be told apart from an empty array.
type catalogResponse struct {
	Products *[]domain.RawCatalogEntry `json:"products"`
}

// FetchBatch issues one bounded request for the first catalog page and
// transforms every entry into a CompetitorPriceRecord. All records in the
// returned batch carry the same capture timestamp.
func (c *Client) FetchBatch(ctx context.Context) ([]domain.CompetitorPriceRecord, error) {
	url := fmt.Sprintf("%s/products?limit=%d&skip=0", c.baseURL, c.limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrTransient, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: unexpected status %d", ErrTransient, url, resp.StatusCode)
	}

	var payload catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrMalformedResponse, err)
	}
	if payload.Products == nil {
		return nil, fmt.Errorf("%w: missing products field", ErrMalformedResponse)
	}

	return transformBatch(*payload.Products, time.Now().UTC())
}

// transformBatch validates and converts raw entries. A single invalid entry
// fails the whole batch; snapshots are recorded whole or not at all.
func transformBatch(entries []domain.RawCatalogEntry, capturedAt time.Time) ([]domain.CompetitorPriceRecord, error) {
	records := make([]domain.CompetitorPriceRecord, 0, len(entries))
	for i, e := range entries {
		if err := validateEntry(e); err != nil {
			return nil, fmt.Errorf("%w: product at index %d: %v", ErrMalformedResponse, i, err)
		}
		records = append(records, domain.CompetitorPriceRecord{
			ProductID:          *e.ID,
			ProductName:        *e.Title,
			Brand:              *e.Brand,
			Category:           *e.Category,
			Price:              *e.Price,
			DiscountPercentage: *e.DiscountPercentage,
			Rating:             *e.Rating,
			Stock:              *e.Stock,
			CapturedAt:         capturedAt,
			Source:             sourceTag,
		})
	}
	return records, nil
}

func validateEntry(e domain.RawCatalogEntry) error {
	switch {
	case e.ID == nil:
		return errors.New("missing id")
	case e.Title == nil:
		return errors.New("missing title")
	case e.Brand == nil:
		return errors.New("missing brand")
	case e.Category == nil:
		return errors.New("missing category")
	case e.Price == nil:
		return errors.New("missing price")
	case e.DiscountPercentage == nil:
		return errors.New("missing discountPercentage")
	case e.Rating == nil:
		return errors.New("missing rating")
	case e.Stock == nil:
		return errors.New("missing stock")
	case *e.Price < 0:
		return fmt.Errorf("negative price %v", *e.Price)
	}
	return nil
}
