package main

import (
	"log"
	"time"

	"authgate/internal/engine/auth"
	"authgate/internal/pkg/logger"
	"authgate/internal/platform/config"
	"authgate/internal/platform/database"
	"authgate/internal/platform/repositories"
	"authgate/internal/workers"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	globalDB, err := database.NewGlobalDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to global DB: %v", err)
	}
	defer globalDB.Close()

	keyRepo := repositories.NewAPIKeyRepository(globalDB)
	gate := auth.NewEntitlementGate(cfg.Environment)

	go func() {
		ticker := time.NewTicker(cfg.Workers.KeyExpiryInterval)
		defer ticker.Stop()

		for range ticker.C {
			if err := workers.ExpireAPIKeys(keyRepo); err != nil {
				log.Printf("Error expiring api keys: %v", err)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(cfg.Workers.AuditTrimInterval)
		defer ticker.Stop()

		for range ticker.C {
			if err := workers.TrimAuditLogs(globalDB, gate, cfg.Workers.AuditRetentionDays); err != nil {
				log.Printf("Error trimming audit logs: %v", err)
			}
		}
	}()

	log.Println("Background workers started")
	select {}
}
