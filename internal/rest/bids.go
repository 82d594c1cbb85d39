package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/bidwise/competitor-price-ingest/internal/bidding"
	"github.com/bidwise/competitor-price-ingest/internal/domain"
	"github.com/bidwise/competitor-price-ingest/internal/numbers"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BidRecorder persists and lists bid adjustments.
type BidRecorder interface {
	Add(ctx context.Context, bid domain.ProductBid) error
	All(ctx context.Context) ([]domain.ProductBid, error)
}

type BidController struct {
	store BidRecorder
	now   func() time.Time
}

func NewBidController(store BidRecorder) *BidController {
	return &BidController{store: store, now: time.Now}
}

func (c *BidController) RegisterBidRoutes(rg *gin.RouterGroup) {
	rg.POST("/bid", c.handleCreateBid)
	rg.GET("/bids/audit", c.handleAudit)
}

func (c *BidController) handleCreateBid(ctx *gin.Context) {
	var in bidding.BidInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if errs := bidding.ValidateBidInput(in); len(errs) > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	rawID, _ := numbers.ExtractFloat(in.ProductID)
	productID := int64(rawID)
	currentCPC, _ := numbers.ExtractFloat(in.CurrentCPC)
	targetROAS, _ := numbers.ExtractFloat(in.TargetROAS)

	adjusted, err := bidding.CalculateAdjustedCPC(currentCPC, targetROAS)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bid := domain.ProductBid{
		ID:           uuid.NewString(),
		ProductID:    productID,
		CurrentCPC:   currentCPC,
		TargetROAS:   targetROAS,
		AdjustedCPC:  adjusted,
		CalculatedAt: c.now().UTC(),
	}

	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()
	if err := c.store.Add(reqCtx, bid); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"adjusted_cpc": adjusted,
		"bid_id":       bid.ID,
	})
}

func (c *BidController) handleAudit(ctx *gin.Context) {
	bids, err := c.store.All(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, bidding.Audit(bids, c.now().UTC()))
}
