package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/codform/order-api/internal/clients"
	"github.com/codform/order-api/internal/config"
	"github.com/codform/order-api/internal/database"
	"github.com/codform/order-api/internal/events"
	"github.com/codform/order-api/internal/intake"
	"github.com/codform/order-api/internal/models"
	"github.com/codform/order-api/internal/repository"
	"github.com/codform/order-api/internal/service"
	syncpkg "github.com/codform/order-api/internal/sync"
	"github.com/codform/order-api/pkg/circuitbreaker"
	"github.com/codform/order-api/pkg/kafka"
	"github.com/codform/order-api/pkg/logger"
	"github.com/codform/order-api/pkg/middleware"
)

// orderAPI is what the handlers need from the order service.
type orderAPI interface {
	SubmitOrder(ctx context.Context, sub *intake.Submission, meta intake.RequestMeta) (*service.SubmitResult, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrders(ctx context.Context, shopDomain, status string, limit, offset int) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error)
	GetStats(ctx context.Context, shopDomain string) (*models.OrderStats, error)
}

// settingsAPI is what the handlers need from the settings service.
type settingsAPI interface {
	GetPublicSettings(ctx context.Context, shopDomain string) (*models.PublicSettings, error)
	GetSettings(ctx context.Context, shopDomain string) (*models.Store, error)
	UpdateSettings(ctx context.Context, shopDomain string, update *models.SettingsUpdate) (*models.Store, error)
}

// Server wires the intake pipeline into an HTTP surface.
type Server struct {
	config     *config.Config
	logger     logger.Logger
	router     *mux.Router
	httpServer *http.Server

	db            *database.Database
	orders        orderAPI
	settings      settingsAPI
	breaker       *circuitbreaker.CircuitBreaker
	rateLimiter   *middleware.RateLimiter
	kafkaProducer *kafka.Producer

	trustForwardedFor bool
}

// NewServer builds the full dependency graph and registers routes.
func NewServer(cfg *config.Config, logger logger.Logger) *Server {
	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		panic(err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Error("Failed to run database migrations", "error", err)
		panic(err)
	}

	storeRepo := repository.NewStoreRepository(db, logger)
	orderRepo := repository.NewOrderRepository(db, logger)

	var publisher events.Publisher = events.NopPublisher{}
	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafka.NewProducer(cfg.Kafka.Brokers, logger)
		if err != nil {
			logger.Error("Failed to create Kafka producer", "error", err)
			panic(err)
		}
		publisher = events.NewKafkaPublisher(producer, cfg.Kafka.OrdersTopic, logger)
	} else {
		logger.Info("No Kafka brokers configured, order events disabled")
	}

	breaker := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.Shopify.BreakerFailureThreshold,
		ResetTimeout:     cfg.Shopify.BreakerResetTimeout,
		HalfOpenMaxCalls: 1,
	})

	shopifyClient := clients.NewShopifyClient(cfg.Shopify.APIVersion, cfg.Shopify.SyncTimeout, logger)
	orchestrator := syncpkg.NewOrchestrator(shopifyClient, orderRepo, breaker, cfg.Shopify.SyncTimeout, logger)

	quotaService := service.NewQuotaService(storeRepo, logger)
	validator := intake.NewValidator(storeRepo, quotaService, cfg.Shopify.PlatformDomain)
	orderService := service.NewOrderService(orderRepo, storeRepo, validator, orchestrator, quotaService, publisher, logger)
	settingsService := service.NewSettingsService(storeRepo, logger)

	rateLimiter := middleware.NewRateLimiter(&middleware.RateLimiterConfig{
		IPMaxTokens:       cfg.RateLimit.IPMaxTokens,
		IPRefillRate:      cfg.RateLimit.IPRefillRate,
		TrustForwardedFor: cfg.RateLimit.TrustForwardedFor,
	}, logger)

	r := mux.NewRouter()

	server := &Server{
		config: cfg,
		logger: logger,
		router: r,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		db:                db,
		orders:            orderService,
		settings:          settingsService,
		breaker:           breaker,
		rateLimiter:       rateLimiter,
		kafkaProducer:     producer,
		trustForwardedFor: cfg.RateLimit.TrustForwardedFor,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its dependencies.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	if s.kafkaProducer != nil {
		if err := s.kafkaProducer.Close(); err != nil {
			s.logger.Error("Error closing Kafka producer", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Error closing database connection", "error", err)
		}
	}

	return s.httpServer.Shutdown(ctx)
}

// setupRoutes configures all routes. Public widget routes carry CORS
// and per-IP rate limiting; dashboard routes are plain JSON.
func (s *Server) setupRoutes() {
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.loggingMiddleware)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.healthCheckHandler).Methods(http.MethodGet)

	// Public widget endpoints.
	public := api.NewRoute().Subrouter()
	public.Use(middleware.CORS)
	if s.rateLimiter != nil {
		public.Use(s.rateLimiter.Middleware)
	}
	public.HandleFunc("/orders", s.createOrderHandler).
		Methods(http.MethodPost, http.MethodOptions)
	public.HandleFunc("/settings", s.missingShopSettingsHandler).
		Methods(http.MethodGet, http.MethodOptions)
	public.HandleFunc("/settings/{shop}", s.publicSettingsHandler).
		Methods(http.MethodGet, http.MethodOptions)

	// Dashboard endpoints.
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/orders", s.getOrdersHandler).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}", s.getOrderByIDHandler).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}/status", s.updateOrderStatusHandler).Methods(http.MethodPatch)
	admin.HandleFunc("/stats", s.getStatsHandler).Methods(http.MethodGet)
	admin.HandleFunc("/settings/{shop}", s.getSettingsHandler).Methods(http.MethodGet)
	admin.HandleFunc("/settings/{shop}", s.updateSettingsHandler).Methods(http.MethodPut)
	admin.HandleFunc("/sync/breaker", s.getSyncBreakerHandler).Methods(http.MethodGet)
	admin.HandleFunc("/sync/breaker/reset", s.resetSyncBreakerHandler).Methods(http.MethodPost)
}

// loggingMiddleware logs each request after it is served.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.Info("Request processed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
			"remoteAddr", r.RemoteAddr,
		)
	})
}

// recoveryMiddleware turns any unhandled panic into a generic 500
// without leaking internals.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("Panic while handling request",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path)
				s.respondWithError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
