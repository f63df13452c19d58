package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nutesshop/storefront/internal/logger"
)

// RouterOptions configures the HTTP router.
type RouterOptions struct {
	Debug       bool
	CORSOrigins []string
	Registry    *prometheus.Registry
}

// NewRouter builds the Gin engine with all storefront routes.
func NewRouter(h *Handlers, log logger.Logger, opts RouterOptions) *gin.Engine {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))
	router.Use(CORS(opts.CORSOrigins))

	router.GET("/health", h.Health)
	if opts.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	shop := router.Group("/api/shop")
	{
		shop.GET("/products", h.GetProducts)
		shop.GET("/products/:slug", h.GetProduct)
		shop.GET("/home", h.GetHome)
		shop.GET("/theme", h.GetTheme)
		shop.GET("/pickup-locations", h.GetPickupLocations)
		shop.POST("/checkout", h.Checkout)
	}

	router.POST("/api/webhooks/strapi", h.StrapiWebhook)

	return router
}
