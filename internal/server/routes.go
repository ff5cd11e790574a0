package server

import (
	"github.com/OFFIS-RIT/claimnet/internal/server/middleware"
	"github.com/OFFIS-RIT/claimnet/internal/server/routes"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Region lookups for the claim form
	apiRoutes.GET("/regions/provinces", routes.GetProvincesHandler,
		middleware.RequireAnyPermission(middleware.PermClaimsScore, middleware.PermNetworkAnalyze))
	apiRoutes.GET("/regions/provinces/:code/regencies", routes.GetRegenciesHandler,
		middleware.RequireAnyPermission(middleware.PermClaimsScore, middleware.PermNetworkAnalyze))

	// Scoring routes
	apiRoutes.POST("/claims/score", routes.ScoreClaimHandler, middleware.RequirePermission(middleware.PermClaimsScore))
	apiRoutes.POST("/batches", routes.CreateBatchHandler, middleware.RequirePermission(middleware.PermBatchesCreate))
	apiRoutes.GET("/batches/:id/predictions.csv", routes.GetBatchPredictionsHandler, middleware.RequirePermission(middleware.PermBatchesCreate))

	// Network analysis routes
	network := apiRoutes.Group("/network", middleware.RequirePermission(middleware.PermNetworkAnalyze))
	network.POST("/sessions", routes.UploadSessionHandler)
	network.GET("/sessions/:id", routes.GetSessionHandler)
	network.DELETE("/sessions/:id", routes.DeleteSessionHandler)
	network.GET("/sessions/:id/faskes/:faskes_id/graph", routes.GetFacilityGraphHandler)
	network.GET("/sessions/:id/faskes/:faskes_id/risk", routes.GetFacilityRiskHandler)
	network.POST("/sessions/:id/inference", routes.RunInferenceHandler)
	network.GET("/sessions/:id/inference", routes.GetInferenceHandler)
}
