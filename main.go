package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	var stores *Stores
	switch cfg.DBDriver {
	case "mysql":
		db, err := InitDB(cfg)
		if err != nil {
			log.Fatalf("❌ Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := RunMigrations(db, cfg.DBName); err != nil {
			log.Fatalf("❌ %v", err)
		}
		stores = NewMySQLStores(db)
	case "memory":
		log.Println("⚠️ Using in-memory store, data is lost on restart")
		stores = NewMemoryStores()
	}

	tokens := NewTokenService(cfg.JWTSecret, cfg.TokenTTL, cfg.RefreshTTL)
	auth := NewAuthHandler(stores.Users, tokens, BcryptHasher{})

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := auth.EnsureAdmin(context.Background(), cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("❌ Failed to create admin account: %v", err)
		}
	}

	r := NewRouter(RouterDeps{
		Auth:       auth,
		Registries: NewRegistries(stores),
		Notifier:   NewNotifier(cfg),
		Policy:     DefaultPolicy(),
	})

	log.Printf("✅ Server running at http://localhost:%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to run server: %v", err)
	}
}
