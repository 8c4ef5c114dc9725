// Package api provides the HTTP API for the licence-manager server.
package api

import (
	"github.com/Kiefer-Networks/licence-manager/internal/api/handlers"
	"github.com/Kiefer-Networks/licence-manager/internal/api/middleware"
	"github.com/Kiefer-Networks/licence-manager/internal/db"
	"github.com/Kiefer-Networks/licence-manager/internal/metrics"
	"github.com/Kiefer-Networks/licence-manager/internal/reconcile"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Router wraps a Gin engine with configured middleware and routes.
type Router struct {
	Engine *gin.Engine
	logger zerolog.Logger
}

// NewRouter creates a new Router with the given dependencies. The metrics
// parameter is optional and may be nil.
func NewRouter(
	database *db.DB,
	service *reconcile.Service,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Router {
	r := &Router{
		Engine: gin.New(),
		logger: logger.With().Str("component", "router").Logger(),
	}

	r.Engine.Use(gin.Recovery())
	r.Engine.Use(middleware.RequestLogger(logger))

	healthHandler := handlers.NewHealthHandler(database, logger)
	healthHandler.RegisterPublicRoutes(r.Engine)

	if m != nil {
		r.Engine.GET("/metrics", gin.WrapH(m.Handler()))
	}

	apiV1 := r.Engine.Group("/api/v1")

	vendorsHandler := handlers.NewVendorsHandler(database, logger)
	vendorsHandler.RegisterRoutes(apiV1)

	licensesHandler := handlers.NewLicensesHandler(database, logger)
	licensesHandler.RegisterRoutes(apiV1)

	employeesHandler := handlers.NewEmployeesHandler(database, logger)
	employeesHandler.RegisterRoutes(apiV1)

	patternsHandler := handlers.NewPatternsHandler(database, logger)
	patternsHandler.RegisterRoutes(apiV1)

	statsHandler := handlers.NewStatsHandler(database, logger)
	statsHandler.RegisterRoutes(apiV1)

	reconcileHandler := handlers.NewReconcileHandler(service, logger)
	reconcileHandler.RegisterRoutes(apiV1)

	r.logger.Info().Msg("API router initialized")
	return r
}
