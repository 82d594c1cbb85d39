package bidding

import (
	"errors"
	"math"

	"github.com/bidwise/competitor-price-ingest/internal/numbers"
)

var (
	ErrInvalidTargetROAS = errors.New("target ROAS must be greater than 0")
	ErrInvalidCurrentCPC = errors.New("current CPC must be non-negative")
)

// CalculateAdjustedCPC computes currentCPC * targetROAS/100, rounded
// half-up to two decimal places.
func CalculateAdjustedCPC(currentCPC, targetROAS float64) (float64, error) {
	if targetROAS <= 0 {
		return 0, ErrInvalidTargetROAS
	}
	if currentCPC < 0 {
		return 0, ErrInvalidCurrentCPC
	}

	adjusted := currentCPC * (targetROAS / 100)
	return math.Round(adjusted*100) / 100, nil
}

// BidInput carries the raw request fields. Values may arrive as JSON
// numbers or numeric strings; both are accepted.
type BidInput struct {
	ProductID  any `json:"product_id"`
	CurrentCPC any `json:"current_cpc"`
	TargetROAS any `json:"target_roas"`
}

// ValidateBidInput checks a bid request and returns every validation error
// message, or an empty slice when the input is valid.
func ValidateBidInput(in BidInput) []string {
	var errs []string

	if _, err := numbers.ExtractFloat(in.ProductID); err != nil {
		errs = append(errs, "Invalid product ID")
	}
	if cpc, err := numbers.ExtractFloat(in.CurrentCPC); err != nil || cpc < 0 {
		errs = append(errs, "Invalid current CPC")
	}
	if roas, err := numbers.ExtractFloat(in.TargetROAS); err != nil || roas <= 0 {
		errs = append(errs, "Invalid target ROAS")
	}

	return errs
}
