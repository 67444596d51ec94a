package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourorg/bloodlink/internal/handler"
	"github.com/yourorg/bloodlink/internal/infrastructure/logger"
	"github.com/yourorg/bloodlink/internal/infrastructure/mongo"
	"github.com/yourorg/bloodlink/internal/observability/metrics"
	"github.com/yourorg/bloodlink/internal/observability/tracing"
	"github.com/yourorg/bloodlink/internal/repository"
	"github.com/yourorg/bloodlink/internal/security/audit"
	"github.com/yourorg/bloodlink/internal/security/auth"
	"github.com/yourorg/bloodlink/internal/security/middleware"
	"github.com/yourorg/bloodlink/internal/security/ratelimit"
	"github.com/yourorg/bloodlink/internal/service"
	"github.com/yourorg/bloodlink/internal/validation"
	"github.com/yourorg/bloodlink/pkg/config"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting BloodLink server", slog.String("environment", cfg.Environment))

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(context.Background(), log, "bloodlink", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Initialize MongoDB client and indexes
	mongoClient, err := mongo.NewClient(cfg.MongoURI, cfg.MongoDatabase, log)
	if err != nil {
		log.Error("failed to connect to MongoDB", slog.String("error", err.Error()))
		os.Exit(1)
	}

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 10*time.Second)
	if err := mongoClient.EnsureIndexes(indexCtx); err != nil {
		cancelIndex()
		log.Error("failed to ensure indexes", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cancelIndex()

	// 5. Initialize repositories
	donorRepo := repository.NewMongoDonorRepository(mongoClient.Collection("donors"), log)
	requestRepo := repository.NewMongoBloodRequestRepository(mongoClient.Collection("blood_requests"), log)
	reportRepo := repository.NewMongoReportRepository(mongoClient.Collection("reports"), log)

	// 6. Initialize services
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "bloodlink")
	validator := validation.NewValidator()
	donorService := service.NewDonorService(donorRepo, tokenManager, validator, cfg.TokenTTL, log)
	requestService := service.NewBloodRequestService(requestRepo, validator, log)
	reportService := service.NewReportService(reportRepo, validator, log)

	// 7. Initialize handlers
	auditLog := audit.NewLogger(log)
	donorHandler := handler.NewDonorHandler(donorService, auditLog, log)
	requestHandler := handler.NewBloodRequestHandler(requestService, auditLog, log)
	reportHandler := handler.NewReportHandler(reportService, auditLog, log)
	healthHandler := handler.NewHealthHandler(mongoClient, log)

	// 8. Setup HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/donor/register", donorHandler.Register)
	mux.HandleFunc("POST /api/v1/donor/login", donorHandler.Login)
	mux.HandleFunc("GET /api/v1/donor/profile", donorHandler.Profile)

	mux.HandleFunc("POST /api/v1/blood-requests", requestHandler.Create)
	mux.HandleFunc("GET /api/v1/blood-requests", requestHandler.List)
	mux.HandleFunc("GET /api/v1/blood-requests/{id}", requestHandler.Get)
	mux.HandleFunc("PUT /api/v1/blood-requests/{id}", requestHandler.Update)
	mux.HandleFunc("DELETE /api/v1/blood-requests/{id}", requestHandler.Delete)

	mux.HandleFunc("POST /api/v1/reports", reportHandler.Create)
	mux.HandleFunc("GET /api/v1/reports", reportHandler.List)
	mux.HandleFunc("GET /api/v1/reports/{id}", reportHandler.Get)
	mux.HandleFunc("DELETE /api/v1/reports/{id}", reportHandler.Delete)

	mux.Handle("/metrics", promhttp.Handler())

	// Health and readiness endpoints (no auth required)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Credential endpoints get a per-IP limiter: 10 attempts per minute.
	loginLimiter := ratelimit.NewLimiter(10, time.Minute)
	defer loginLimiter.Stop()

	// Chain middleware: request ID -> metrics -> content type -> rate limit -> JWT -> CORS
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.ValidateJSONContentType(log)(
				middleware.RateLimitCredentials(loginLimiter, log)(
					middleware.JWTMiddleware(tokenManager, log)(handlerWithCORS),
				),
			),
		),
		log,
	)

	// 9. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.String("database", cfg.MongoDatabase),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	if err := mongoClient.Close(shutdownCtx); err != nil {
		log.Error("mongodb close error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

// withRequestID attaches a request ID to the context and response headers for
// traceability; audit entries pick it up via the shared context key.
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), audit.RequestIDContextKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
