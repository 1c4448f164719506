package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MNehlan/ParkX/internal/api"
	"github.com/MNehlan/ParkX/internal/api/handler"
	"github.com/MNehlan/ParkX/internal/api/middleware"
	"github.com/MNehlan/ParkX/internal/config"
	"github.com/MNehlan/ParkX/internal/repository/postgresql"
	"github.com/MNehlan/ParkX/internal/service"
)

func main() {
	// 1. Load configuration
	cfg := config.Load()
	log.Println("Configuration loaded.")

	// 2. Setup database connection
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connection established.")

	// 3. Initialize repositories
	userRepo := postgresql.NewPgUserRepository(db)
	facilityRepo := postgresql.NewPgFacilityRepository(db)
	sessionRepo := postgresql.NewPgVehicleSessionRepository(db)
	adminRepo := postgresql.NewPgAdminRepository(db)

	// 4. Start WebSocket manager
	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start()
	log.Println("WebSocket manager started.")

	// 5. Initialize services
	authService := service.NewAuthService(userRepo, adminRepo, cfg.JWTSecret, cfg.JWTExpirationHours)
	facilityService := service.NewFacilityService(facilityRepo, sessionRepo, webSocketManager)
	sessionService := service.NewSessionService(facilityRepo, sessionRepo, webSocketManager)
	adminService := service.NewAdminService(userRepo, facilityRepo, sessionRepo, adminRepo,
		authService, webSocketManager)

	// 6. Seed the bootstrap admin if configured
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureSeedAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("WARNING: could not seed admin account: %v", err)
	}
	cancelSeed()

	// 7. Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// 8. Setup HTTP router
	router := api.SetupRouter(authService, facilityService, sessionService, adminService,
		authMiddleware, webSocketManager)

	// 9. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shut down: %v", err)
	}

	log.Println("Server stopped.")
}
