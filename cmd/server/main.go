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

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/client"
	"github.com/sidarthus89/EVE-Trade/internal/config"
	"github.com/sidarthus89/EVE-Trade/internal/handler"
	"github.com/sidarthus89/EVE-Trade/internal/middleware"
	"github.com/sidarthus89/EVE-Trade/internal/repository"
	"github.com/sidarthus89/EVE-Trade/internal/scheduler"
	"github.com/sidarthus89/EVE-Trade/internal/service"
	esisync "github.com/sidarthus89/EVE-Trade/internal/sync"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := connectToDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	regionRepo := repository.NewRegionRepository(db, logger)
	stationRepo := repository.NewStationRepository(db, logger)
	structureRepo := repository.NewStructureRepository(db, logger)
	groupRepo := repository.NewMarketGroupRepository(db, logger)
	itemRepo := repository.NewItemTypeRepository(db, logger)
	orderRepo := repository.NewOrderRepository(db, logger)
	statusRepo := repository.NewSyncStatusRepository(db, logger)
	tokenRepo := repository.NewTokenRepository(db, logger)

	// Initialize the ESI client
	esiClient := client.New(client.Config{
		BaseURL:           cfg.ESI.BaseURL,
		UserAgent:         cfg.ESI.UserAgent,
		RequestTimeout:    cfg.ESI.RequestTimeout,
		RequestInterval:   cfg.ESI.RequestInterval,
		MaxRetries:        cfg.ESI.MaxRetries,
		RetryBaseDelay:    cfg.ESI.RetryBaseDelay,
		RateLimitWait:     cfg.ESI.RateLimitWait,
		MaxRateLimitWaits: cfg.ESI.MaxRateLimitWaits,
	}, logger)

	// Initialize sync jobs and scheduler
	runner := esisync.NewRunner(statusRepo, logger)
	jobs := scheduler.Jobs{
		Regions:  esisync.NewRegionsJob(esiClient, regionRepo, logger),
		Stations: esisync.NewStationsJob(esiClient, regionRepo, stationRepo, logger),
		MarketTree: esisync.NewMarketTreeJob(
			esiClient, groupRepo, itemRepo, statusRepo, cfg.Sync.SnapshotPath, logger),
		Structures: esisync.NewStructuresJob(
			esiClient, tokenRepo, orderRepo, stationRepo, structureRepo, cfg.Sync.StructurePause, logger),
		OrdersPopular: esisync.NewOrdersJob(
			esisync.JobOrdersPopular, esiClient, orderRepo, scheduler.PopularRegionSet(), logger),
		OrdersStandard: esisync.NewOrdersJob(
			esisync.JobOrdersStandard, esiClient, orderRepo, scheduler.StandardRegionSet(regionRepo), logger),
	}
	sched := scheduler.New(runner, jobs, statusRepo, cfg.Sync.QuarterlyDays, logger)

	if cfg.Sync.Enabled {
		if err := sched.Start(); err != nil {
			logger.Fatal("Failed to start scheduler", zap.Error(err))
		}
	} else {
		logger.Info("Sync scheduler disabled by configuration")
	}

	// Initialize services
	marketService := service.NewMarketService(orderRepo, itemRepo, cfg.Sync.SnapshotPath, logger)
	universeService := service.NewUniverseService(regionRepo, stationRepo, logger)
	statusService := service.NewStatusService(statusRepo, logger)

	// Initialize handlers
	marketHandler := handler.NewMarketHandler(marketService, logger)
	universeHandler := handler.NewUniverseHandler(universeService, logger)
	statusHandler := handler.NewStatusHandler(statusService, logger)

	// Set up HTTP server with Gin
	router := setupRouter(marketHandler, universeHandler, statusHandler, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop cadence triggers; in-flight sync runs finish on their own
	if cfg.Sync.Enabled {
		sched.Stop()
	}

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func createLogger(level string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

func setupRouter(
	marketHandler *handler.MarketHandler,
	universeHandler *handler.UniverseHandler,
	statusHandler *handler.StatusHandler,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Use middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/regions", universeHandler.GetRegions)
		v1.GET("/stations/:regionId", universeHandler.GetStations)

		market := v1.Group("/market")
		{
			market.GET("/:typeId/:regionId", marketHandler.GetOrderBook)
		}

		items := v1.Group("/items")
		{
			items.GET("/tree", marketHandler.GetMarketTree)
			items.GET("/search/:query", marketHandler.SearchItems)
			items.GET("/:typeId", marketHandler.GetItemType)
		}

		v1.GET("/sync/status", statusHandler.GetSyncStatus)
	}

	return router
}
