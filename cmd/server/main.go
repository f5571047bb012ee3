package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codefusion/internal/api"
	"codefusion/internal/code_converter"
	"codefusion/internal/code_reviewer"
	"codefusion/internal/generative_provider"
	"codefusion/internal/services"
	"codefusion/pkg/database"
	"codefusion/pkg/types"
)

func main() {
	// Load application configuration from environment variables
	globalConfig, err := types.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	logger, err := newLogger(globalConfig.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	defer logger.Sync()

	if globalConfig.Server.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	var history services.HistoryStore
	if globalConfig.Database.Enabled() {
		dbConfig := database.Config{
			Host:     globalConfig.Database.Host,
			Port:     globalConfig.Database.Port,
			User:     globalConfig.Database.User,
			Password: globalConfig.Database.Password,
			DBName:   globalConfig.Database.Name,
			SSLMode:  globalConfig.Database.SSLMode,
		}

		db, err := database.NewDB(ctx, dbConfig, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		repo := database.NewHistoryRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare history table", zap.Error(err))
		}
		history = repo
	} else {
		logger.Info("DB_HOST not set, request history disabled")
	}

	providerFactory := generative_provider.NewFactory(globalConfig)
	provider, err := providerFactory.CreateProvider(ctx, generative_provider.GenerativeProviderType(globalConfig.Provider.Name))
	if err != nil {
		logger.Fatal("failed to create generative provider", zap.Error(err))
	}

	converter := code_converter.NewCodeConverterService(logger, provider)
	reviewer := code_reviewer.NewCodeReviewService(logger, provider)
	svc := services.NewServices(converter, reviewer, history)

	runServer(logger, globalConfig, svc)
}

// newLogger builds a production zap logger with human-readable timestamps
func newLogger(level string) (*zap.Logger, error) {
	logConfig := zap.NewProductionConfig()
	logConfig.EncoderConfig.TimeKey = "time"
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logLevel := zap.InfoLevel
	if level != "" {
		if err := logLevel.UnmarshalText([]byte(level)); err != nil {
			logLevel = zap.InfoLevel
		}
	}
	logConfig.Level = zap.NewAtomicLevelAt(logLevel)
	return logConfig.Build()
}

func runServer(logger *zap.Logger, cfg *types.Config, svc *services.Services) {
	apiServer := api.NewGinServer(logger, svc, cfg.Server.WebDir, cfg.Provider.GenerationTimeout)

	addr := cfg.Server.GetServerAddress()
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      apiServer.GetRouter(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting server",
			zap.String("address", addr),
			zap.String("provider", cfg.Provider.Name),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Block until SIGINT or SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
