package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/metropolisapp/metropolis/internal/config"
	"github.com/metropolisapp/metropolis/internal/events"
	"github.com/metropolisapp/metropolis/internal/handlers"
	"github.com/metropolisapp/metropolis/internal/logger"
	"github.com/metropolisapp/metropolis/internal/middleware"
	"github.com/metropolisapp/metropolis/internal/services/directions"
	"github.com/metropolisapp/metropolis/internal/services/geo"
	"github.com/metropolisapp/metropolis/internal/services/itinerary"
	"github.com/metropolisapp/metropolis/internal/services/planner"
	"github.com/metropolisapp/metropolis/internal/services/serpapi"
	"github.com/metropolisapp/metropolis/internal/store"
)

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	// Load .env for local development; missing file is fine
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.ServerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("events_source_configured", cfg.SerpAPIKey != ""),
		zap.Bool("geocoding_configured", cfg.GoogleMapsKey != ""),
	)

	// Pipeline stages
	generator := planner.NewOpenAIGenerator(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, debugMode)
	builder := planner.NewBuilder(generator, zapLogger)
	normalizer := events.NewNormalizer(zapLogger)
	registry := store.NewRegistry()

	var source serpapi.Source
	if cfg.SerpAPIKey != "" {
		source = serpapi.NewClient(cfg.SerpAPIKey, zapLogger)
	} else {
		zapLogger.Warn("serpapi_key_not_configured_using_curated_fallback")
		source = serpapi.NoSource{}
	}

	service := itinerary.NewService(source, normalizer, builder, registry, zapLogger)

	// Map features degrade when no Google Maps key is set
	var geocoder geo.Geocoder
	var router directions.Router
	if cfg.GoogleMapsKey != "" {
		geocoder = geo.NewGoogleClient(cfg.GoogleMapsKey)
		router = directions.NewGoogleClient(cfg.GoogleMapsKey)
	} else {
		zapLogger.Warn("google_maps_key_not_configured_map_features_degraded")
		geocoder = geo.NoGeocoder{}
		router = directions.NoRouter{}
	}
	resolver := geo.NewResolver(geocoder, zapLogger)

	// Initialize handlers
	itineraryHandler := handlers.NewItineraryHandler(service, resolver, router, zapLogger)
	healthChecker := handlers.NewHealthChecker(handlers.UpstreamStatus{
		EventsSource: cfg.SerpAPIKey != "",
		Geocoding:    cfg.GoogleMapsKey != "",
	})

	// Setup router
	r := mux.NewRouter()

	// Note: In gorilla/mux, middleware executes in registration order
	zapLogger.Info("setting_up_middleware")

	// 1. Security headers (set on all responses)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	// 2. Request size limits
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	// 3. Content-Type validation for POST/PATCH/PUT requests
	r.Use(middleware.ContentType)
	// 4. Request timeout; generation holds an LLM round trip, so this is
	// longer than a typical API timeout
	r.Use(middleware.Timeout(time.Duration(cfg.RequestTimeout) * time.Second))
	// 5. Error handler (catches panics)
	r.Use(middleware.ErrorHandler(zapLogger))
	// 6. Logging (innermost, executes last before handler)
	r.Use(middleware.Logging(zapLogger))

	rateLimitMW, err := middleware.RateLimit("")
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	// Public routes (no rate limiting for health checks)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	// API v1 routes
	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	itinerariesRouter := apiRouter.PathPrefix("/itineraries").Subrouter()
	itinerariesRouter.Use(rateLimitMW)
	itineraryHandler.RegisterRoutes(itinerariesRouter)

	// CORS wraps the whole router so preflight requests are handled
	// before route matching
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.FrontendURL},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}).Handler(r)

	// Setup server
	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        corsHandler,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   time.Duration(cfg.RequestTimeout+15) * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	// Only expose minimal version info
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
