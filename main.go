package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kendall-kelly/warranty-dispatch-api/cache"
	"github.com/kendall-kelly/warranty-dispatch-api/config"
	"github.com/kendall-kelly/warranty-dispatch-api/controllers"
	"github.com/kendall-kelly/warranty-dispatch-api/logger"
	"github.com/kendall-kelly/warranty-dispatch-api/middleware"
	"github.com/kendall-kelly/warranty-dispatch-api/models"
	"github.com/kendall-kelly/warranty-dispatch-api/services"
	"github.com/kendall-kelly/warranty-dispatch-api/validation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	logger.SetLogger(zl)
	defer func() { _ = zl.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	zl.Info("Starting Warranty Dispatch API server", zap.String("env", cfg.GoEnv))

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}

	db := config.GetDB()
	if err := db.AutoMigrate(&models.Order{}, &models.Technician{}); err != nil {
		zl.Fatal("Failed to migrate database", zap.Error(err))
	}
	zl.Info("Database migration completed successfully")

	ctx := context.Background()

	snapshots, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		zl.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer closeCache()

	services.InitDispatchService(db, snapshots)

	if cfg.ExportStorageEnabled() {
		s3Service, err := services.InitS3Service(ctx)
		if err != nil {
			zl.Fatal("Failed to initialize S3 service", zap.Error(err))
		}
		services.InitExportService(s3Service)
		zl.Info("Export storage enabled", zap.String("bucket", cfg.AWSS3Bucket))
	}

	router, err := newRouter(cfg)
	if err != nil {
		zl.Fatal("Failed to set up router", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zl.Info("Server is running", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		zl.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		zl.Fatal("HTTP server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("Graceful shutdown failed", zap.Error(err))
	}
	zl.Info("Server stopped")
}

// openCache picks Redis when REDIS_ADDR is set and the in-process cache otherwise
func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, func(), error) {
	if !cfg.RedisEnabled() {
		return cache.NewMemoryCache(cfg.CacheTTL), func() {}, nil
	}

	redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
	if err != nil {
		return nil, nil, err
	}
	logger.L().Info("Snapshot cache backed by Redis", zap.String("addr", cfg.RedisAddr))
	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			logger.L().Warn("failed to close Redis client", zap.Error(err))
		}
	}, nil
}

// newRouter builds the HTTP handler: health endpoints are public, everything
// else sits behind the token check.
func newRouter(cfg *config.Config) (*gin.Engine, error) {
	if err := validation.Register(); err != nil {
		return nil, err
	}

	authMiddleware, err := middleware.Authenticate(cfg)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware())
	router.Use(cors.New(corsConfig(cfg)))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		api := v1.Group("")
		api.Use(authMiddleware)
		controllers.RegisterRoutes(api)
	}

	return router, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	return corsCfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Warranty Dispatch API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database not connected",
			},
		})
		return
	}

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		logger.L().Error("database ping failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
