package main

import (
	"log"
	"time"

	"donorly/internal/pkg/logger"
	"donorly/internal/platform/config"
	"donorly/internal/platform/database"
	"donorly/internal/platform/repositories"
	"donorly/internal/workers"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	globalDB, err := database.NewGlobalDB(cfg.Database.Global)
	if err != nil {
		log.Fatalf("Failed to connect to global DB: %v", err)
	}
	defer globalDB.Close()

	tenantDBPool := database.NewTenantDBPool(cfg.Database.Tenant)
	defer tenantDBPool.CloseAll()

	orgRepo := repositories.NewOrganizationRepository(globalDB)
	scanner := workers.NewOverdueScanner(orgRepo, tenantDBPool)

	interval := cfg.Worker.OverdueScanInterval
	if interval <= 0 {
		interval = time.Hour
	}

	log.Printf("Starting overdue scan worker (interval %v)", interval)

	if err := scanner.Run(); err != nil {
		log.Printf("Overdue scan failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if err := scanner.Run(); err != nil {
			log.Printf("Overdue scan failed: %v", err)
		}
	}
}
