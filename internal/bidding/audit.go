package bidding

import (
	"math"
	"time"

	"github.com/bidwise/competitor-price-ingest/internal/domain"
)

// auditWindow is how far back the budget audit looks.
const auditWindow = 7 * 24 * time.Hour

// flagThresholdRatio flags bids whose adjustment moved more than this share
// of the current CPC.
const flagThresholdRatio = 0.20

// FlaggedBid describes one bid whose adjustment exceeded the threshold.
type FlaggedBid struct {
	BidID        string    `json:"bid_id"`
	ProductID    int64     `json:"product_id"`
	CurrentCPC   float64   `json:"current_cpc"`
	AdjustedCPC  float64   `json:"adjusted_cpc"`
	Difference   float64   `json:"difference"`
	Threshold    float64   `json:"threshold"`
	CalculatedAt time.Time `json:"calculated_at"`
}

// AuditReport summarizes one budget audit run.
type AuditReport struct {
	TotalBids   int          `json:"total_bids"`
	FlaggedBids int          `json:"flagged_bids"`
	Flagged     []FlaggedBid `json:"flagged"`
	AuditedAt   time.Time    `json:"audit_timestamp"`
}

// Audit reviews bids calculated within the audit window and flags any where
// the adjusted CPC drifted more than 20% from the current CPC.
func Audit(bids []domain.ProductBid, now time.Time) AuditReport {
	cutoff := now.Add(-auditWindow)

	report := AuditReport{
		Flagged:   []FlaggedBid{},
		AuditedAt: now,
	}
	for _, bid := range bids {
		if bid.CalculatedAt.Before(cutoff) {
			continue
		}
		report.TotalBids++

		threshold := flagThresholdRatio * bid.CurrentCPC
		diff := math.Abs(bid.AdjustedCPC - bid.CurrentCPC)
		if diff > threshold {
			report.Flagged = append(report.Flagged, FlaggedBid{
				BidID:        bid.ID,
				ProductID:    bid.ProductID,
				CurrentCPC:   bid.CurrentCPC,
				AdjustedCPC:  bid.AdjustedCPC,
				Difference:   diff,
				Threshold:    threshold,
				CalculatedAt: bid.CalculatedAt,
			})
		}
	}
	report.FlaggedBids = len(report.Flagged)
	return report
}
