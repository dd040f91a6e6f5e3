// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rotacusto/internal/http/handlers"
	"rotacusto/internal/http/middleware"
	"rotacusto/internal/modules/quote"
)

func NewRouter(quoteSvc *quote.Service) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	quoteHandler := handlers.NewQuoteHandler(quoteSvc)
	r.POST("/api/quotes", quoteHandler.Compute)
	r.GET("/api/routes/stats", quoteHandler.CacheStats)
	r.POST("/api/routes/stale", quoteHandler.MarkStale)

	tripHandler := handlers.NewTripHandler(quoteSvc)
	r.POST("/api/trips", tripHandler.Register)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
