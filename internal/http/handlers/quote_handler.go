// README: Quote handlers for pricing computation and cache maintenance.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rotacusto/internal/modules/quote"
)

type QuoteHandler struct {
	quote *quote.Service
}

func NewQuoteHandler(svc *quote.Service) *QuoteHandler {
	return &QuoteHandler{quote: svc}
}

func (h *QuoteHandler) Compute(c *gin.Context) {
	var req quote.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	resp, err := h.quote.ComputePricing(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

func (h *QuoteHandler) CacheStats(c *gin.Context) {
	stats, err := h.quote.CacheStats(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, stats)
}

type markStaleReq struct {
	Key string `json:"key"`
}

func (h *QuoteHandler) MarkStale(c *gin.Context) {
	var req markStaleReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Key == "" {
		writeError(c, http.StatusBadRequest, "missing key")
		return
	}
	if err := h.quote.MarkStale(c.Request.Context(), req.Key); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"key": req.Key, "stale": true})
}
