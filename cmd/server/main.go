package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventhub/internal/api"
	"eventhub/internal/app/service"
	"eventhub/internal/clock"
	"eventhub/internal/common/security"
	"eventhub/internal/domain/repository"
	"eventhub/internal/platform/cache"
	"eventhub/internal/platform/config"
	"eventhub/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database & apply migrations
	database.Connect()
	defer database.Close()
	database.Migrate()
	fmt.Println("Database ready.")

	// 4. Initialize Redis (token revocation store)
	cache.ConnectRedis()
	defer cache.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	eventRepo := repository.NewPgEventRepository(database.DB)
	regRepo := repository.NewPgRegistrationRepository(database.DB)

	// 6. Initialize Services
	clk := clock.NewSystem()
	authService := service.NewAuthService(userRepo)
	eventService := service.NewEventService(eventRepo, clk, config.AppConfig.DefaultEventCapacity)
	regService := service.NewRegistrationService(regRepo, eventRepo, clk)
	statsService := service.NewStatsService(userRepo, eventRepo, regRepo, clk)
	userService := service.NewUserService(userRepo)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(authService, eventService, regService, statsService, userService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
