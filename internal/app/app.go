// Package app provides application-level coordination and dependency injection.
// It orchestrates the initialization of all service components, manages their lifecycles,
// and provides a clean application structure following dependency inversion principles.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/adapters/primary/rest"
	"github.com/sean-rowe/weather-report/internal/adapters/secondary/googlemaps"
	"github.com/sean-rowe/weather-report/internal/adapters/secondary/ipinfo"
	"github.com/sean-rowe/weather-report/internal/adapters/secondary/tomorrow"
	"github.com/sean-rowe/weather-report/internal/config"
	"github.com/sean-rowe/weather-report/internal/core/ports"
	"github.com/sean-rowe/weather-report/internal/core/services"
	"github.com/sean-rowe/weather-report/internal/infrastructure/cache"
	"github.com/sean-rowe/weather-report/internal/infrastructure/circuitbreaker"
	"github.com/sean-rowe/weather-report/internal/middleware"
	"github.com/sean-rowe/weather-report/internal/observability"
	"github.com/sean-rowe/weather-report/internal/version"
)

// Breaker names, one per upstream provider.
const (
	breakerIPInfo   = "ipinfo"
	breakerGeocoder = "geocoder"
	breakerTomorrow = "tomorrow"
	breakerPlaces   = "places"
)

// Server represents the HTTP server instance.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// App manages the application lifecycle and dependencies.
type App struct {
	cfg       *config.Config
	server    *Server
	logger    *zap.Logger
	telemetry *observability.Telemetry

	credentials ports.CredentialLoader
	breakers    *circuitbreaker.Manager
	weather     ports.WeatherService
	places      ports.PlacesService
}

// New creates a new application instance from the environment.
//
// Returns:
//   - *App: Configured application instance
//   - error: Logger initialization error
func New() (*App, error) {
	cfg := config.Load()

	logger, err := newLogger(cfg)

	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewWithConfig(cfg, logger), nil
}

// NewWithConfig creates an application from an explicit configuration and logger
// and wires its services.
func NewWithConfig(cfg *config.Config, logger *zap.Logger) *App {
	a := &App{
		cfg:    cfg,
		logger: logger,
	}

	a.wire()

	return a
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// WeatherService returns the wired report service.
func (a *App) WeatherService() ports.WeatherService {
	return a.weather
}

// Start initializes telemetry and starts the HTTP server in the background.
//
// Parameters:
//   - ctx: Context for initialization
//
// Returns:
//   - error: Server start error
func (a *App) Start(ctx context.Context) error {
	if a.cfg.Observability.Enabled {
		if err := a.initTelemetry(ctx); err != nil {
			a.logger.Warn("failed to initialize telemetry, continuing without it", zap.Error(err))
		} else {
			// rewire so the upstream guards and credential cache record metrics
			a.wire()
		}
	}

	a.server = &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%s", a.cfg.Server.Port),
			Handler:      a.Handler(),
			ReadTimeout:  a.cfg.Server.ReadTimeout,
			WriteTimeout: a.cfg.Server.WriteTimeout,
			IdleTimeout:  a.cfg.Server.IdleTimeout,
		},
		logger: a.logger,
	}

	go func() {
		a.logger.Info("starting HTTP server",
			zap.String("port", a.cfg.Server.Port),
			zap.String("environment", a.cfg.Server.Environment))

		if err := a.server.server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				a.logger.Fatal("failed to start server", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down all application components.
func (a *App) Stop() {
	a.logger.Info("shutting down application...")

	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := a.server.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to shutdown server gracefully", zap.Error(err))
		}
	}

	if a.telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := a.telemetry.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to shutdown telemetry", zap.Error(err))
		}
	}

	// Sync fails on some platforms for stdout/stderr
	_ = a.logger.Sync()
}

// WaitForShutdown blocks until the server receives a shutdown signal.
func (a *App) WaitForShutdown() {
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	a.logger.Info("shutdown signal received")
}

// initTelemetry initializes OpenTelemetry providers.
func (a *App) initTelemetry(ctx context.Context) error {
	telemetryConfig := observability.Config{
		ServiceName:    a.cfg.Observability.ServiceName,
		ServiceVersion: a.cfg.Observability.ServiceVersion,
		Environment:    a.cfg.Observability.Environment,
		OTLPEndpoint:   a.cfg.Observability.OTLPEndpoint,
		SampleRate:     a.cfg.Observability.SampleRate,
	}

	telemetry, err := observability.InitTelemetry(ctx, telemetryConfig, a.logger)

	if err != nil {
		return err
	}

	a.telemetry = telemetry

	return nil
}

// wire builds the upstream clients, wraps each in its circuit breaker and
// constructs the services.
func (a *App) wire() {
	ext := a.cfg.External

	a.breakers = circuitbreaker.NewManager(a.logger)
	a.credentials = a.initCredentials()

	locator := &CircuitBreakerLocator{
		next:  ipinfo.NewClient(ext.IPInfoBaseURL, ext.HTTPTimeout, a.logger),
		guard: a.guard(breakerIPInfo),
	}

	maps := googlemaps.NewClient(ext.GeocodeBaseURL, ext.HTTPTimeout, a.logger)

	geocoder := &CircuitBreakerGeocoder{
		next:  maps,
		guard: a.guard(breakerGeocoder),
	}

	places := &CircuitBreakerPlacesProvider{
		next:  maps,
		guard: a.guard(breakerPlaces),
	}

	provider := &CircuitBreakerWeatherProvider{
		next: tomorrow.NewClient(tomorrow.Config{
			BaseURL:  ext.WeatherBaseURL,
			Timezone: ext.WeatherTimezone,
			Units:    ext.WeatherUnits,
			Timeout:  ext.HTTPTimeout,
		}, a.logger),
		guard: a.guard(breakerTomorrow),
	}

	a.weather = services.NewWeatherService(a.credentials, locator, geocoder, provider, a.logger)
	a.places = services.NewPlacesService(a.credentials, places, a.logger)
}

func (a *App) guard(name string) guard {
	return guard{
		cb:        a.breakers.GetBreaker(name, circuitbreaker.DefaultConfig()),
		telemetry: a.telemetry,
	}
}

// initCredentials returns the environment loader, cached when CREDENTIALS_CACHE_TTL is set.
func (a *App) initCredentials() ports.CredentialLoader {
	loader := config.NewEnvCredentialLoader()

	if a.cfg.Credentials.CacheTTL <= 0 {
		return loader
	}

	a.logger.Info("credential cache enabled", zap.Duration("ttl", a.cfg.Credentials.CacheTTL))

	return cache.NewCredentialCache(loader, a.cfg.Credentials.CacheTTL, a.telemetry, a.logger)
}

// Handler creates and configures the HTTP router with all routes and middleware.
//
// Returns:
//   - http.Handler: Configured router
func (a *App) Handler() http.Handler {
	weatherHandler := rest.NewWeatherHandler(a.weather, a.cfg.External.ForwardClientIP, a.logger)
	placesHandler := rest.NewPlacesHandler(a.places, a.logger)
	obsMiddleware := middleware.NewObservabilityMiddleware(a.telemetry, a.logger)

	router := mux.NewRouter()

	router.Use(obsMiddleware.CorrelationMiddleware)
	router.Use(obsMiddleware.TracingMiddleware)
	router.Use(obsMiddleware.MetricsMiddleware)
	router.Use(obsMiddleware.LoggingMiddleware)

	router.HandleFunc("/", a.serveIndex).Methods("GET")

	router.HandleFunc("/get_location", weatherHandler.GetLocation).Methods("GET")
	router.HandleFunc("/get_weather", weatherHandler.GetWeather).Methods("GET")
	router.HandleFunc("/get_detailed_weather", weatherHandler.GetDetailedWeather).Methods("GET")
	router.HandleFunc("/handle_request", weatherHandler.HandleRequest).Methods("GET")
	router.HandleFunc("/get_meteogram_data", weatherHandler.GetMeteogramData).Methods("GET")

	router.HandleFunc("/places/autocomplete", placesHandler.Autocomplete).Methods("GET")
	router.HandleFunc("/places/details", placesHandler.Details).Methods("GET")

	// Health check endpoints
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	router.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		a.writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	}).Methods("GET")

	router.HandleFunc("/health/ready", a.ready).Methods("GET")

	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		a.writeJSON(w, http.StatusOK, version.Get())
	}).Methods("GET")

	router.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		a.writeJSON(w, http.StatusOK, map[string]interface{}{
			"circuit_breakers": a.breakers.GetStats(),
		})
	}).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}

// ready reports whether every provider credential is configured.
func (a *App) ready(w http.ResponseWriter, r *http.Request) {
	if _, err := a.credentials.Load(r.Context()); err != nil {
		a.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": err.Error(),
		})

		return
	}

	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (a *App) serveIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(a.cfg.Server.StaticDir, "index.html"))
}

func (a *App) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("failed to encode response", zap.Error(err))
	}
}
