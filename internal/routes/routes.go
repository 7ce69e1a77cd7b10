package routes

import (
	"github.com/gin-gonic/gin"

	"kdigo-rationale-server/internal/audit"
	"kdigo-rationale-server/internal/config"
	"kdigo-rationale-server/internal/handlers"
	"kdigo-rationale-server/internal/logger"
	"kdigo-rationale-server/internal/middleware"
)

// Dependencies is everything the router needs, constructed once at startup.
// Store is nil when auditing is disabled.
type Dependencies struct {
	Config    *config.Config
	Log       *logger.Logger
	Composer  handlers.Composer
	Generator handlers.Generator
	Store     *audit.Store
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	auditing := deps.Config.AuditingEnabled && deps.Store != nil

	var recorder audit.Recorder
	if auditing {
		recorder = deps.Store
	}
	rationaleHandler := handlers.NewRationaleHandler(deps.Composer, deps.Generator, recorder, deps.Config.AuditPolicy, deps.Log)

	api := router.Group("/api")
	{
		api.POST("/kdigo-rationale", rationaleHandler.GenerateRationale)

		if auditing {
			historyHandler := handlers.NewHistoryHandler(deps.Store, deps.Log)
			api.GET("/history", middleware.HistoryAuthMiddleware(deps.Config.HistoryJWTSecret, deps.Log), historyHandler.GetHistory)
		}
	}

	// Simple health check endpoint
	router.GET("/health", handlers.HealthHandler(auditing, deps.Composer.Edition()))
}

// NewRouter builds a gin engine with the standard middleware stack and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.CORS(deps.Config.Origin))
	SetupRoutes(router, deps)
	return router
}
