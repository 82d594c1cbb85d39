package rest

import (
	"net/http"

	"github.com/bidwise/competitor-price-ingest/internal/config"
	"github.com/gin-gonic/gin"
)

func NewServer(cfg config.Config) (*gin.Engine, *http.Server) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	return r, srv
}
