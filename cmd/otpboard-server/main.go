package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/otpboard/pkg/otpboard/config"
	"github.com/mikepea/otpboard/pkg/otpboard/database"
	"github.com/mikepea/otpboard/pkg/otpboard/logging"
	"github.com/mikepea/otpboard/pkg/otpboard/models"
	"github.com/mikepea/otpboard/pkg/otpboard/server"

	_ "github.com/mikepea/otpboard/api/swagger"
)

// @title otpboard API
// @version 1.0
// @description Multi-account TOTP dashboard with tags, share links and CSV import/export.

// @contact.name otpboard
// @contact.url https://github.com/mikepea/otpboard

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Dashboard session token. Format: "Bearer {token}"

// @securityDefinitions.apikey APITokenAuth
// @in header
// @name Authorization
// @description API_AUTH_TOKEN. Format: "Bearer {token}"

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := database.Connect(database.Options{Driver: cfg.DBDriver, DSN: cfg.DBDSN}); err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := models.AutoMigrate(database.GetDB()); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("Database migrations completed", "driver", database.DetectDriver(cfg.DBDSN))

	gin.SetMode(cfg.GinMode)
	router, err := server.NewRouter(server.Options{
		Config: cfg,
		DB:     database.GetDB(),
		Logger: logger,
	})
	if err != nil {
		logger.Error("Failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting otpboard server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
