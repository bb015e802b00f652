package main

import (
	"fmt"
	"log"
	"net/http"

	"authgate/internal/api"
	"authgate/internal/api/handlers"
	"authgate/internal/api/middleware"
	"authgate/internal/engine/auth"
	"authgate/internal/pkg/logger"
	"authgate/internal/platform/audit"
	"authgate/internal/platform/config"
	"authgate/internal/platform/database"
	"authgate/internal/platform/repositories"
	"authgate/internal/platform/session"
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

	globalDBWrapper := database.NewGlobalDBWrapper(globalDB)

	// Repositories
	orgRepo := repositories.NewOrganizationRepository(globalDB)
	projectRepo := repositories.NewProjectRepository(globalDB)
	userRepo := repositories.NewUserRepository(globalDB)
	keyRepo := repositories.NewAPIKeyRepository(globalDB)

	// Core services
	scopeCache := auth.NewMemoryScopeCache(cfg.Cache.SweepInterval)
	defer scopeCache.Close()

	authSvc := auth.NewService(keyRepo, orgRepo, scopeCache, cfg.Cache.ScopeTTL)
	gate := auth.NewEntitlementGate(cfg.Environment)
	tokenSvc := session.NewTokenService(cfg.JWT)
	auditLog := audit.NewLogger(globalDB)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, orgRepo, tokenSvc)
	apiKeyHandler := handlers.NewAPIKeyHandler(keyRepo, projectRepo, authSvc, auditLog, cfg.Auth.BcryptCost)
	scopeHandler := handlers.NewScopeHandler(gate, projectRepo)
	auditHandler := handlers.NewAuditHandler(globalDBWrapper, orgRepo, gate)
	healthHandler := handlers.NewHealthHandler(globalDBWrapper, scopeCache)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)
	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(authSvc)

	deps := &api.Dependencies{
		AuthHandler:      authHandler,
		APIKeyHandler:    apiKeyHandler,
		ScopeHandler:     scopeHandler,
		AuditHandler:     auditHandler,
		HealthHandler:    healthHandler,
		AuthMiddleware:   authMiddleware,
		APIKeyMiddleware: apiKeyMiddleware,
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
