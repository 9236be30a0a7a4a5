package main

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/openrange/backend/internal/admin"
	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	name := os.Getenv("CLIENT_NAME")
	if name == "" {
		name = "launch-monitor"
		log.Printf("Using default client name: %s", name)
	}

	key := os.Getenv("CLIENT_KEY")
	if key == "" {
		key, err = admin.GenerateKey()
		if err != nil {
			log.Fatalf("Failed to generate key: %v", err)
		}
	}

	scopes := []string{admin.ScopeShots}
	if s := os.Getenv("CLIENT_SCOPES"); s != "" {
		scopes = strings.Split(s, ",")
	}

	if err := admin.CreateClient(db, name, key, scopes); err != nil {
		log.Fatalf("Failed to create api client: %v", err)
	}

	log.Printf("✓ API client created/updated successfully")
	log.Printf("  Name: %s", name)
	log.Printf("  Scopes: %v", scopes)
	log.Printf("  Key: %s", key)
	log.Println("\nExchange it for a token with POST /api/v1/auth/token")
}
