package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"clicker_backend/internal/service"
)

// Connects to the live standings socket for a battle and prints frames.
// Usage: ws_smoke <user_id> <battle_id>
func main() {
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(os.Getenv("JWT_SECRET"))

	if len(os.Args) < 3 {
		log.Fatal("usage: ws_smoke <user_id> <battle_id>")
	}
	userID := os.Args[1]
	battleID := os.Args[2]

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	var uid int64
	if _, err := fmt.Sscan(userID, &uid); err != nil {
		log.Fatalf("bad user id: %v", err)
	}
	token, err := service.GenerateJWT(uid)
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}

	url := fmt.Sprintf("ws://localhost:%s/ws?token=%s&battle_id=%s", port, token, battleID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()

	log.Println("connected, waiting for standings frames (30s)...")
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Printf("read: %v", err)
			return
		}
		fmt.Println(string(msg))
	}
}
