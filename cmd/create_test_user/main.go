package main

import (
	"context"
	"log"
	"os"

	"clicker_backend/internal/db"
	"clicker_backend/internal/domain"
	"clicker_backend/internal/repository"
	"clicker_backend/internal/service"
)

// Creates a local test player and prints a JWT for it.
func main() {
	// expects DATABASE_URL and JWT_SECRET env vars
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(os.Getenv("JWT_SECRET"))

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewPlayerRepository(pool)
	ctx := context.Background()

	tgID := int64(1234567890)

	u, err := repo.GetUserByTgID(ctx, tgID)
	if err != nil {
		u = &domain.User{
			TgID:      tgID,
			Username:  "testuser",
			FirstName: "Tester",
		}
		if _, err := repo.CreateUser(ctx, u, nil); err != nil {
			log.Fatalf("create user failed: %v", err)
		}
		log.Printf("user created id=%d\n", u.ID)
	} else {
		log.Printf("user already exists id=%d\n", u.ID)
	}

	player, err := repo.Get(ctx, u.ID)
	if err != nil {
		log.Fatalf("read player failed: %v", err)
	}
	log.Printf("player balance=%d energy=%d\n", player.Balance, player.Energy)

	token, err := service.GenerateJWT(u.ID)
	if err != nil {
		log.Fatalf("jwt failed: %v", err)
	}
	log.Printf("token: %s\n", token)
}
