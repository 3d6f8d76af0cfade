package main

import (
	"fmt"
	"log"
	"net/http"

	"donorly/internal/api"
	"donorly/internal/api/handlers"
	"donorly/internal/api/middleware"
	"donorly/internal/engine/receipts"
	"donorly/internal/pkg/logger"
	"donorly/internal/platform/audit"
	"donorly/internal/platform/auth"
	"donorly/internal/platform/config"
	"donorly/internal/platform/database"
	"donorly/internal/platform/repositories"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	// Database Connections
	globalDB, err := database.NewGlobalDB(cfg.Database.Global)
	if err != nil {
		log.Fatalf("Failed to connect to global DB: %v", err)
	}
	defer globalDB.Close()

	globalDBWrapper := database.NewGlobalDBWrapper(globalDB)

	tenantDBPool := database.NewTenantDBPool(cfg.Database.Tenant)
	defer tenantDBPool.CloseAll()

	// Repositories on the global database
	orgRepo := repositories.NewOrganizationRepository(globalDB)
	userRepo := repositories.NewUserRepository(globalDB)
	receiptsRepo := receipts.NewRepository(globalDB)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	receiptSvc := receipts.NewService(receiptsRepo, cfg.Receipts.DefaultPrefix, cfg.Receipts.DefaultFormat)
	auditLogger := audit.NewLogger(globalDB)

	// Handlers. Tenant-scoped services are built per request from the
	// request's tenant database connection.
	authHandler := handlers.NewAuthHandler(userRepo, orgRepo, receiptsRepo, tokenSvc, tenantDBPool, cfg.Database.Tenant, cfg.Receipts)
	orgHandler := handlers.NewOrgHandler(orgRepo, receiptSvc)
	donorHandler := handlers.NewDonorHandler()
	donationHandler := handlers.NewDonationHandler(receiptSvc, auditLogger)
	pledgeHandler := handlers.NewPledgeHandler(receiptSvc, auditLogger)
	reportHandler := handlers.NewReportHandler()
	healthHandler := handlers.NewHealthHandler(globalDBWrapper)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)
	tenantMiddleware := middleware.NewTenantMiddleware(orgRepo, tenantDBPool)

	// Router
	deps := &api.Dependencies{
		AuthHandler:      authHandler,
		OrgHandler:       orgHandler,
		DonorHandler:     donorHandler,
		DonationHandler:  donationHandler,
		PledgeHandler:    pledgeHandler,
		ReportHandler:    reportHandler,
		HealthHandler:    healthHandler,
		AuthMiddleware:   authMiddleware,
		TenantMiddleware: tenantMiddleware,
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
