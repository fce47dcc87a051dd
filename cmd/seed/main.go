package main

import (
	"go-identity-core/db/seeder"
	"go-identity-core/internal/config"
	"go-identity-core/internal/config/env"
)

func main() {
	cfg := env.NewConfig()
	log := config.NewLogger(cfg)
	db := config.NewDatabase(cfg, log)

	config.Migrate(db, log)
	seeder.Seed(db)

	log.Info("Seed completed")
}
