package v1

import (
	"github.com/gin-gonic/gin"

	"pricetrack/internal/platform/logger"
)

// RouterConfig dépendances du routeur HTTP
type RouterConfig struct {
	Handlers       *Handlers
	Logger         *logger.Logger
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter construit le moteur gin avec les middlewares et toutes les routes
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestID(),
		RequestLogger(cfg.Logger),
		CORS(cfg.AllowedOrigins),
	)

	h := cfg.Handlers
	router.GET("/api/health", h.Health)

	api := router.Group("/api/v1")
	api.Use(RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	products := api.Group("/final-products")
	{
		products.GET("", h.ListFinalProducts)
		products.GET("/:id", h.GetFinalProduct)
		products.DELETE("/:id", h.DeleteFinalProduct)
		products.GET("/:id/matches", h.GetMatches)
		products.PUT("/:id/matches", h.PutMatches)
		products.POST("/:id/matches", h.PostMatches)
		products.DELETE("/:id/matches/:listingId", h.DeleteMatch)
		products.GET("/:id/candidates", h.GetCandidates)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/lowest-moment/:id", h.LowestMoment)
		reports.GET("/campaigns/:id", h.Campaigns)
		reports.GET("/platform-averages/:id", h.PlatformAverages)
		reports.GET("/tag-averages/:id", h.TagAverages)
		reports.GET("/lowest-price/:id", h.LowestPriceList)
		reports.GET("/overview/:id", h.Overview)
		reports.GET("/price-history/:listingId", h.PriceHistory)
		reports.GET("/stock-status/:listingId", h.StockStatus)
		reports.GET("/tag-price/:tagId", h.TagPrices)
	}

	exports := api.Group("/exports")
	{
		exports.GET("/lowest-moment", h.ExportLowestMoments)
		exports.GET("/campaigns/:id", h.ExportCampaigns)
	}

	return router
}
