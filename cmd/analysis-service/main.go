package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-insight/internal/analysis/config"
	delivery "golang-stock-insight/internal/analysis/delivery/http"
	"golang-stock-insight/internal/analysis/repository"
	"golang-stock-insight/internal/analysis/service"
	"golang-stock-insight/pkg/logger"
	"golang-stock-insight/pkg/postgres"
	"golang-stock-insight/pkg/redis"
	"golang-stock-insight/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the analysis service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Analysis Service", logger.Field("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize Telegram notifier (optional)
	var notifier telegram.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Warn("Failed to initialize Telegram notifier, continuing without notifications", logger.ErrorField(err))
			notifier = nil
		}
	}

	// Initialize repositories
	marketDataRepo := repository.NewMarketDataRepository(cfg, appLogger)
	reportRepo := repository.NewAnalysisReportRepository(db.DB)
	stocksRepo := repository.NewStocksRepository(db.DB)

	// Initialize services
	analyzerSvc := service.NewAnalyzerService(cfg, appLogger, marketDataRepo, reportRepo, redisClient, notifier)
	catalogSvc := service.NewCatalogService(stocksRepo, reportRepo, appLogger)

	warmupSvc := service.NewWarmupService(cfg, appLogger, analyzerSvc)
	if err := warmupSvc.Start(); err != nil {
		appLogger.Fatal("Failed to start cache warmup", logger.ErrorField(err))
	}
	defer warmupSvc.Stop()

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Initialize handlers and routes
	analysisHandler := delivery.NewAnalysisHandler(analyzerSvc, appLogger)
	stockHandler := delivery.NewStockHandler(catalogSvc, appLogger)
	apiV1 := e.Group("/api/v1")
	analysisHandler.RegisterRoutes(apiV1.Group("/analysis"))
	stockHandler.RegisterRoutes(apiV1.Group("/stocks"))

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "analysis-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-analysis.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analysis-service CLI: %s\n", err)
		os.Exit(1)
	}
}
