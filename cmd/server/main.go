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

	"github.com/binance-dashboard/internal/cache"
	"github.com/binance-dashboard/internal/config"
	"github.com/binance-dashboard/internal/exchange"
	"github.com/binance-dashboard/internal/exchange/binance"
	"github.com/binance-dashboard/internal/exchange/mock"
	"github.com/binance-dashboard/internal/handler"
	"github.com/binance-dashboard/internal/middleware"
	"github.com/binance-dashboard/internal/repository"
	"github.com/binance-dashboard/internal/service"
	"github.com/binance-dashboard/internal/worker"
	"github.com/binance-dashboard/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// cachePrefix namespaces dashboard entries in the shared Redis
const cachePrefix = "dashboard:"

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := middleware.InitLogger(cfg.Log.Dir); err != nil {
		log.Printf("Warning: file logging disabled: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis
	rdb, err := initRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Auto migrate database
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize repositories
	tradeRepo := repository.NewTradeRepository(db)
	incomeRepo := repository.NewIncomeRepository(db)
	seriesRepo := repository.NewSeriesRepository(db)

	// Exchange data source and price stream
	var (
		source   exchange.AccountDataSource
		provider exchange.PriceProvider
	)
	if cfg.UseMock {
		middleware.LogInfo("Using mock exchange data")
		source = mock.NewSource()
	} else {
		source = binance.NewClient(cfg.Binance)
		provider = binance.NewStream(cfg.Binance.WSURL)
	}

	middleware.LogDebug("Tracking symbols %v, cache ttl %v, refresh every %v",
		cfg.Binance.Symbols, cfg.Cache.TTL(), cfg.Refresh.Interval())

	loader := cache.NewLoader(cache.NewRedisStore(rdb, cachePrefix), cfg.Cache.TTL())

	// Initialize services
	dashboardService := service.NewDashboardService(source, tradeRepo, incomeRepo, seriesRepo, loader, cfg.Binance)
	priceService := service.NewPriceService(rdb, provider, source, loader, cfg.Binance.PriceSymbols)

	// Initialize handlers
	dashboardHandler := handler.NewDashboardHandler(dashboardService, cfg.API.Timeout())
	priceHandler := handler.NewPriceHandler(priceService, cfg.API.Timeout())

	// Background refresh
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var refreshWorker *worker.RefreshWorker
	if cfg.Refresh.Enabled {
		refreshWorker = worker.NewRefreshWorker(dashboardService, cfg.Refresh.Interval(), cfg.API.Timeout())
		go refreshWorker.Start(ctx)
	}

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLoggerMiddleware())
	router.Use(corsMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		health := gin.H{
			"status":       "ok",
			"version":      Version,
			"commit":       Commit,
			"build_time":   BuildTime,
			"time":         time.Now().Unix(),
			"mock":         cfg.UseMock,
			"price_stream": priceService.IsStreaming(),
		}
		if refreshWorker != nil {
			last, err := refreshWorker.LastRefresh()
			health["last_refresh"] = last
			if err != nil {
				health["refresh_error"] = err.Error()
			}
		}
		c.JSON(http.StatusOK, health)
	})

	dashboardHandler.RegisterRoutes(&router.RouterGroup)
	priceHandler.RegisterRoutes(&router.RouterGroup)

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start price service
	if err := priceService.Start(ctx); err != nil {
		log.Printf("Warning: Failed to start price service: %v", err)
	}

	// Start server in goroutine
	go func() {
		middleware.LogInfo("Starting server on %s (version %s)", addr, Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if refreshWorker != nil {
		refreshWorker.Stop()
	}
	priceService.Stop()
	stop()

	// Graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Close Redis connection
	if err := rdb.Close(); err != nil {
		log.Printf("Error closing Redis connection: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("Server exited properly")
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.Server.Mode == "release" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func initRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
