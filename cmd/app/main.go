package main

import (
	"os"
	"os/signal"
	"syscall"

	app "go-identity-core/internal"
	"go-identity-core/internal/config"
	"go-identity-core/internal/config/env"
	"go-identity-core/internal/config/monitor"
	"go-identity-core/internal/config/redis"
	"go-identity-core/internal/config/validation"
)

func main() {
	cfg := env.NewConfig()
	log := config.NewLogger(cfg)
	rdb := redis.NewRedis(log, cfg)
	db := config.NewDatabase(cfg, log)
	validation := validation.NewValidation()

	if cfg.Monitoring.Enabled {
		monitoring := monitor.NewMonitoring(log, cfg)
		defer monitoring.Shutdown()
	}

	config.Migrate(db, log)

	app.NewApp(log, cfg, db, validation, rdb).Bootstrap()

	// The transport layer (HTTP, gRPC, CLI) is mounted by the embedding
	// application; standalone, the core just runs migrations and idles.
	log.Info("identity core ready")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")
}
