package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pricescout/backend/internal/domain"
)

// ProductSearcher is the slice of the search service the handlers need.
type ProductSearcher interface {
	Search(ctx context.Context, country, query string) ([]domain.ProductRecord, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searcher ProductSearcher
}

// NewHandler creates a new HTTP handler
func NewHandler(searcher ProductSearcher) *Handler {
	return &Handler{searcher: searcher}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricescout-backend",
		"version": "1.0.0",
	})
}

// SearchProducts handles product price search requests
func (h *Handler) SearchProducts(c *gin.Context) {
	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "country and query are required: " + err.Error(),
		})
		return
	}

	if h.searcher == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Product search not configured",
		})
		return
	}

	records, err := h.searcher.Search(c.Request.Context(), req.Country, req.Query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	// A search that found nothing is still a success: empty array, not null.
	if records == nil {
		records = []domain.ProductRecord{}
	}
	c.JSON(http.StatusOK, records)
}
