package api

import (
	"net/http"
	"time"

	"eventhub/internal/api/handler"
	"eventhub/internal/app/service"
	"eventhub/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	eventService *service.EventService,
	regService *service.RegistrationService,
	statsService *service.StatsService,
	userService *service.UserService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the Authorization: Bearer token and puts claims in context.
	// Authentication itself is enforced per route group.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", authHandler.RegisterRoutes)

		// Event routes (reads public, mutations admin)
		eventHandler := handler.NewEventHandler(eventService)
		v1.Route("/events", eventHandler.RegisterRoutes)

		// Registration routes (authenticated; check-in and per-event listing admin)
		regHandler := handler.NewRegistrationHandler(regService)
		v1.Route("/registrations", regHandler.RegisterRoutes)

		// Stats routes (admin)
		statsHandler := handler.NewStatsHandler(statsService)
		v1.Route("/stats", statsHandler.RegisterRoutes)

		// User administration routes (admin)
		userHandler := handler.NewUserHandler(userService)
		v1.Route("/users", userHandler.RegisterRoutes)
	})

	return r
}
