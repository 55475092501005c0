// Package server wires every handler into one gin engine.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/otpboard/pkg/otpboard/accounts"
	"github.com/mikepea/otpboard/pkg/otpboard/auth"
	"github.com/mikepea/otpboard/pkg/otpboard/codes"
	"github.com/mikepea/otpboard/pkg/otpboard/config"
	"github.com/mikepea/otpboard/pkg/otpboard/countdown"
	"github.com/mikepea/otpboard/pkg/otpboard/importexport"
	"github.com/mikepea/otpboard/pkg/otpboard/keepalive"
	"github.com/mikepea/otpboard/pkg/otpboard/logging"
	"github.com/mikepea/otpboard/pkg/otpboard/repository"
	"github.com/mikepea/otpboard/pkg/otpboard/sharelinks"
	"github.com/mikepea/otpboard/pkg/otpboard/tags"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// ServiceName is reported by the health endpoints
const ServiceName = "otpboard"

// Options carries the pieces the router is built from. Clock is optional.
type Options struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *slog.Logger
	Clock  countdown.Clock
}

// NewRouter builds the engine with every route registered
func NewRouter(opts Options) (*gin.Engine, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := repository.New(opts.DB,
		repository.WithTimeout(cfg.DBTimeout),
		repository.WithLogger(logger),
		repository.WithDefaultPeriod(cfg.DefaultPeriod),
	)
	generator := codes.NewGenerator(countdown.NewScheduler(cfg.DefaultPeriod, opts.Clock))
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionDuration)

	authHandler, err := auth.NewHandler(cfg.AuthSecretKey, tokens, cfg.BaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("auth handler: %w", err)
	}
	if cfg.AuthSecretKey == "" {
		logger.Warn("AUTH_SECRET_KEY is not set; dashboard login is disabled")
	}

	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(logger))

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": ServiceName})
	}
	r.GET("/health", health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.GET("/health", health)

		// Session login (public)
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Dashboard routes (JWT bearer or session cookie)
		dashboard := api.Group("", auth.AuthMiddleware(tokens))
		accounts.NewHandler(store, generator, logger).RegisterRoutes(dashboard)
		tags.NewHandler(store.Tags).RegisterRoutes(dashboard)
		importexport.NewHandler(store, logger).RegisterRoutes(dashboard)

		shareHandler := sharelinks.NewHandler(store, generator, cfg.BaseURL, logger)
		shareHandler.RegisterRoutes(dashboard)

		codesHandler := codes.NewHandler(store.Accounts, generator, logger)
		codesHandler.RegisterRoutes(dashboard)

		// Programmatic code generation (static API token)
		codesHandler.RegisterAPIRoutes(api.Group("", auth.APITokenMiddleware(cfg.APIAuthToken)))

		// Keep-alive (optional cron secret)
		keepalive.NewHandler(store.Accounts, cfg.CronSecret, logger).RegisterRoutes(api)

		// Public share view
		shareHandler.RegisterPublicRoutes(r)
	}

	return r, nil
}
