package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/csmathguy/clarity/internal/infra/config"
	"github.com/csmathguy/clarity/internal/infra/security"
	"github.com/csmathguy/clarity/internal/transport/http/handlers"
	"github.com/csmathguy/clarity/internal/transport/http/middleware"
	"github.com/csmathguy/clarity/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Users         *usecase.UserService
	PasswordReset *usecase.PasswordResetService
	GTD           *usecase.GTDService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config            *config.AppConfig
	Logger            *zap.Logger
	Services          ServiceSet
	PasswordValidator *security.PasswordValidator
	Metrics           *middleware.HTTPMetrics
	Database          DatabaseChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)

	healthOptions := make([]handlers.HealthOption, 0, 1)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Services.PasswordReset, deps.PasswordValidator)
		authHandler.RegisterRoutes(api.Group("/auth"))

		adminGroup := api.Group("/admin")
		adminGroup.Use(authMiddleware, middleware.RequireAdmin())
		adminHandler := handlers.NewAdminUsersHandler(deps.Services.Users, deps.Services.PasswordReset)
		adminHandler.RegisterRoutes(adminGroup)

		gtdGroup := api.Group("")
		gtdGroup.Use(authMiddleware)
		gtdHandler := handlers.NewGTDHandler(deps.Services.GTD)
		gtdHandler.RegisterRoutes(gtdGroup)
	}

	return r
}
