package main

import (
	"log"

	"github.com/betonpro/tradelinkpro/internal/config"
	"github.com/betonpro/tradelinkpro/internal/server"
	"github.com/betonpro/tradelinkpro/pkg/database"
	"github.com/betonpro/tradelinkpro/pkg/storage"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to initialize upload storage: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
	}

	srv := server.New(cfg, db, store, rdb)

	log.Printf("listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
