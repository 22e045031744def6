package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/matcha-app/matcha-core/internal/cache"
	"github.com/matcha-app/matcha-core/internal/notify"
)

// AppContext holds shared dependencies (DB, Redis, Logger, Notifier)
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Notifier   notify.Dispatcher
}

// New creates a new AppContext
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, notifier notify.Dispatcher) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Notifier:   notifier,
	}
}
