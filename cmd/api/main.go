package main

import (
	"log"

	"github.com/joho/godotenv"

	"reportauto/api"
	"reportauto/internal"
	"reportauto/internal/config"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := internal.NewDefaultLogger().With("Main")
	server := api.NewServer(cfg, internal.NewDefaultLogger())

	logger.Info("listening on :%s", cfg.Server.Port)
	if err := server.Router().Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
