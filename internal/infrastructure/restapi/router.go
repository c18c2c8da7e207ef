package restapi

import (
	"risk_monitor/internal/infrastructure/configloader"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter configures and returns the Gin router for the service.
func SetupRouter(
	sessionHandler *SessionHandler,
	riskHandler *RiskHandler,
	feedHandler *FeedHandler,
	registryHandler *RegistryHandler,
	cfg *configloader.Config,
) *gin.Engine {
	router := gin.Default()

	// The browser-hosted dashboard calls this API from another origin.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/session", sessionHandler.GetSessionHandler)
		v1.POST("/session/connect", sessionHandler.ConnectHandler)
		v1.POST("/session/disconnect", sessionHandler.DisconnectHandler)

		v1.GET("/risk/positions", riskHandler.GetPositionsHandler)
		v1.GET("/risk/summary", riskHandler.GetSummaryHandler)

		v1.GET("/feeds/vault", feedHandler.GetVaultFeedHandler)
		v1.GET("/feeds/notifications", feedHandler.GetNotificationsHandler)

		v1.GET("/registry/currencies", registryHandler.GetCurrenciesHandler)
		v1.GET("/registry/pairs", registryHandler.GetPairsHandler)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Swagger.Enabled {
		router.StaticFile("/docs/swagger.yaml", "./docs/swagger.yaml")
		swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
		router.GET(cfg.Swagger.Path+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
	}

	return router
}
