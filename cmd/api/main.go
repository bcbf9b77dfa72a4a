package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/staynest/booking-api/internal/config"
	"github.com/staynest/booking-api/internal/domain/availability"
	"github.com/staynest/booking-api/internal/domain/booking"
	"github.com/staynest/booking-api/internal/middleware"
	"github.com/staynest/booking-api/internal/pkg/database"
	"github.com/staynest/booking-api/internal/pkg/jwt"
	"github.com/staynest/booking-api/internal/pkg/logger"
	pkgresponse "github.com/staynest/booking-api/internal/pkg/response"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, LogFile: cfg.LogFile}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting StayNest booking API")

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, database.DefaultPostgresConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		// Availability must keep answering without Redis; only rate limiting is lost.
		log.Error().Err(err).Msg("Failed to connect to Redis, rate limiting disabled")
		redis = nil
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Repositories ----------
	bookingRepo := booking.NewRepository(db)

	// ---------- Services ----------
	availabilityService := availability.NewService(bookingRepo, availability.UTCClock, availability.Config{
		MaxRangeDays:   cfg.AvailabilityMaxRange,
		MaxOverlapDays: cfg.OverlapMaxRange,
		StoreTimeout:   cfg.StoreTimeout(),
	})

	// ---------- Handlers ----------
	availabilityHandler := availability.NewHandler(availabilityService)

	limiter := middleware.NewRateLimiter(redis, "availability", cfg.RateLimitPerMinute, time.Minute)

	r := newRouter(cfg, availabilityHandler, jwtService, limiter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func newRouter(cfg *config.Config, availabilityHandler *availability.Handler, jwtService *jwt.Service, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	if cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.NotFound(w, "Route not found")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	authMiddleware := middleware.Auth(jwtService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/availability", availabilityHandler.Routes(limiter.Middleware))
		r.Mount("/properties", availabilityHandler.PropertyRoutes(limiter.Middleware))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Mount("/availability", availabilityHandler.AdminRoutes(authMiddleware, middleware.RequireAdmin()))
	})

	return r
}
