package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/bidwise/competitor-price-ingest/internal/domain"
	"github.com/gin-gonic/gin"
)

const defaultLatestCount = 5

// PriceReader serves read-only queries against the shared price list.
type PriceReader interface {
	Latest(ctx context.Context, n int) ([]domain.CompetitorPriceRecord, error)
	Count(ctx context.Context) (int64, error)
	LastCapture(ctx context.Context) (time.Time, error)
}

// StoreHealth reports shared store reachability within a short bound.
type StoreHealth interface {
	Ping(ctx context.Context) error
}

type PriceController struct {
	store  PriceReader
	health StoreHealth
}

func NewPriceController(store PriceReader, health StoreHealth) *PriceController {
	return &PriceController{store: store, health: health}
}

func (c *PriceController) RegisterPriceRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", c.handleHealth)
	rg.GET("/prices", c.handleLatestPrices)
}

// handleHealth always answers 200; store trouble is reported in the body,
// never raised to the caller.
func (c *PriceController) handleHealth(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	if err := c.health.Ping(reqCtx); err != nil {
		ctx.JSON(http.StatusOK, gin.H{
			"status":      "unhealthy",
			"redis":       "disconnected",
			"cachedCount": 0,
			"lastFetch":   nil,
		})
		return
	}

	var count int64
	if n, err := c.store.Count(reqCtx); err == nil {
		count = n
	}

	var lastFetch any
	if t, err := c.store.LastCapture(reqCtx); err == nil && !t.IsZero() {
		lastFetch = t
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"redis":       "connected",
		"cachedCount": count,
		"lastFetch":   lastFetch,
	})
}

func (c *PriceController) handleLatestPrices(ctx *gin.Context) {
	limit := defaultLatestCount
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	prices, err := c.store.Latest(ctx.Request.Context(), limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"prices": prices,
		"count":  len(prices),
	})
}
