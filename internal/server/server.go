// Package server assembles the HTTP router from configuration and a database pool
package server

import (
	"database/sql"
	"net/http"
	"time"

	authmw "github.com/CPSG-31/kbti-backend/internal/auth/middleware"
	"github.com/CPSG-31/kbti-backend/internal/auth/service"
	"github.com/CPSG-31/kbti-backend/internal/config"
	"github.com/CPSG-31/kbti-backend/internal/handlers"
	loggerMiddleware "github.com/CPSG-31/kbti-backend/internal/logger/middleware"
	"github.com/CPSG-31/kbti-backend/internal/metrics"
	"github.com/CPSG-31/kbti-backend/internal/middlewares"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"github.com/CPSG-31/kbti-backend/internal/repositories"
	"github.com/CPSG-31/kbti-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// APIPrefix is the path every API route is mounted under
const APIPrefix = "/api/v1"

// NewRouter wires repositories, services and handlers and returns the router.
// The metrics registry is optional; without it /metrics is not mounted.
func NewRouter(cfg *config.Config, db *sql.DB, logger *zap.Logger, registry *metrics.Registry) chi.Router {
	var domainMetrics *metrics.DomainMetrics
	if registry != nil {
		domainMetrics = registry.Domain
	}

	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpiry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger)
	userTokenRepo := repositories.NewUserTokenRepository(db, logger)
	catalogRepo := repositories.NewCatalogRepository(db, logger)
	definitionRepo := repositories.NewDefinitionRepository(db, logger)
	voteRepo := repositories.NewVoteRepository(db, logger)

	// Initialize services
	authService := services.NewAuthService(userRepo, userTokenRepo, tokenGenerator, logger)
	definitionService := services.NewDefinitionService(definitionRepo, catalogRepo, domainMetrics, logger)
	moderationService := services.NewModerationService(definitionRepo, domainMetrics, logger)
	voteService := services.NewVoteService(voteRepo, domainMetrics, logger)
	searchService := services.NewSearchService(definitionRepo, catalogRepo, logger)
	userService := services.NewUserService(userRepo, userTokenRepo, catalogRepo, logger)
	dashboardService := services.NewDashboardService(userRepo, definitionRepo, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	definitionHandler := handlers.NewDefinitionHandler(definitionService, searchService, voteService, logger)
	catalogHandler := handlers.NewCatalogHandler(searchService, logger)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, logger)
	adminHandler := handlers.NewAdminHandler(moderationService, userService, logger)
	tokenCleaningHandler := handlers.NewTokenCleaningHandler(userTokenRepo, logger)
	healthHandler := handlers.NewHealthHandler(db, logger)

	// Initialize auth middleware
	authMiddleware := authmw.AuthMiddleware(authService)
	optionalAuthMiddleware := authmw.OptionalAuthMiddleware(authService)
	adminMiddleware := authmw.RoleMiddleware(models.RoleAdmin)

	r := chi.NewRouter()

	r.Use(middlewares.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger))
	r.Use(middlewares.RecoveryMiddleware(logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	if cfg.RateLimit.RequestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit.RequestsPerMinute, time.Minute))
	}
	if cfg.Server.MaxRequestSize > 0 {
		r.Use(middlewares.RequestSizeLimitMiddleware(cfg.Server.MaxRequestSize))
	}
	if registry != nil {
		r.Use(registry.HTTP.Middleware)
		r.Handle("/metrics", registry.Handler())
	}

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	healthHandler.RegisterRoutes(r)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route(APIPrefix, func(r chi.Router) {
		authHandler.RegisterRoutes(r, authMiddleware)
		definitionHandler.RegisterRoutes(r, authMiddleware, optionalAuthMiddleware)
		catalogHandler.RegisterRoutes(r)
		dashboardHandler.RegisterRoutes(r, authMiddleware)

		// Maintenance routes exist only when an API key is configured
		if cfg.APIKey != "" {
			r.Group(func(r chi.Router) {
				r.Use(authmw.APIKeyMiddleware(cfg.APIKey))
				tokenCleaningHandler.RegisterRoutes(r)
			})
		}

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			adminHandler.RegisterRoutes(r)
		})
	})

	return r
}

// NewHTTPServer wraps handler in a server with the service timeouts
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
