package main

import (
	"context"

	"github.com/matcha-app/matcha-core/internal/cache"
	"github.com/matcha-app/matcha-core/internal/config"
	"github.com/matcha-app/matcha-core/internal/db"
	"github.com/matcha-app/matcha-core/internal/logger"
	"github.com/matcha-app/matcha-core/internal/server"
)

// Boots the shared infrastructure (DB with migrations, Redis) and a gRPC
// server exposing health and reflection. The transport repo builds its
// endpoint services on top of the internal/service packages and attaches
// them through server.Registrar.
func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.GRPC.Host + ":" + cfg.GRPC.Port
	log.Info("starting gRPC server", "addr", addr)

	if err := server.StartGRPCServer(cfg); err != nil {
		log.Error("failed to start gRPC server", "err", err)
	}
}
