package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"clicker_backend/internal/content"
	"clicker_backend/internal/db"
	"clicker_backend/internal/repository"
)

// Publishes a game config JSON file as the next content version.
// Usage: seed_config -file config.json
func main() {
	file := flag.String("file", "config.json", "path to game config json")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}

	var cfg content.GameConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		log.Fatalf("parse %s: %v", *file, err)
	}
	if len(cfg.Upgrades) == 0 {
		log.Fatal("config has no upgrades, refusing to publish")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewConfigRepository(pool)
	version, err := repo.Save(context.Background(), &cfg)
	if err != nil {
		log.Fatalf("publish config: %v", err)
	}
	log.Printf("published game config version %d\n", version)
}
