package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kendall-kelly/warranty-dispatch-api/cache"
	"github.com/kendall-kelly/warranty-dispatch-api/config"
	"github.com/kendall-kelly/warranty-dispatch-api/controllers"
	"github.com/kendall-kelly/warranty-dispatch-api/models"
	"github.com/kendall-kelly/warranty-dispatch-api/services"
	"github.com/kendall-kelly/warranty-dispatch-api/validation"
)

// ReferenceTime is the wall clock the test applications start from
// (Tuesday 2024-03-05, 09:30 UTC)
var ReferenceTime = time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

// NewTestDB opens an in-memory SQLite database with the dispatch tables
func NewTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), config.QuietGormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Order{}, &models.Technician{}); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}
	return db, nil
}

// SteppingClock returns a clock that starts at start and advances one second
// per call, so successive creations get distinct order numbers
func SteppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	tick := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return start.Add(time.Duration(tick) * time.Second)
	}
}

// NewDispatchRouter wires db into a fresh dispatch service and mounts the API
// routes under /api/v1 behind the given middleware
func NewDispatchRouter(db *gorm.DB, middleware ...gin.HandlerFunc) (*gin.Engine, *services.DispatchService, error) {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		return nil, nil, err
	}

	config.SetDB(db)
	config.SetConfig(&config.Config{GoEnv: "test", WeekStartDay: time.Monday})

	dispatch := services.InitDispatchService(db, cache.NewMemoryCache(time.Minute))
	dispatch.SetClock(SteppingClock(ReferenceTime))

	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	v1.Use(middleware...)
	controllers.RegisterRoutes(v1)

	return router, dispatch, nil
}

// CloseDB releases the connection pool behind db
func CloseDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
