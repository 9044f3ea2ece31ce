// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"github.com/gin-gonic/gin"

	"tratta/internal/http/handlers"
	"tratta/internal/http/middleware"
	"tratta/internal/modules/pricing"
	"tratta/internal/modules/quotecache"
)

type ServerDeps struct {
	Pricing *pricing.Service
	Cache   *quotecache.Service
}

func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery(), middleware.ProcessTime())

	quoteHandler := handlers.NewQuoteHandler(deps.Pricing, deps.Cache)
	r.POST("/check-price", quoteHandler.CheckPrice)

	adminHandler := handlers.NewAdminHandler(deps.Pricing)
	r.GET("/health", adminHandler.Health)
	r.GET("/config", adminHandler.Config)
	r.POST("/refresh-config", adminHandler.Refresh)

	return r
}
