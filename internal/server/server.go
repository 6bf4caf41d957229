package server

import (
	"fmt"
	"net/http"
	"time"

	"shophub/internal/ai"
	"shophub/internal/config"
	"shophub/internal/database"
	"shophub/internal/domain"
	custommiddleware "shophub/internal/middleware"
	"shophub/internal/payment"
	"shophub/internal/repository"
	"shophub/internal/service"
	"shophub/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const developmentJWTSecret = "shophub-development-secret"

// Dependencies are the collaborators the router is built from. Database and
// Redis are optional.
type Dependencies struct {
	Storage   repository.Storage
	Database  database.Service
	Redis     *redis.Client
	Completer ai.Completer
	Gateway   payment.Gateway
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) (*Server, error) {
	router, err := NewRouter(cfg, logger, deps)
	if err != nil {
		return nil, err
	}

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		deps:   deps,
	}

	return server, nil
}

// NewRouter wires services and handlers over deps and returns the HTTP handler.
func NewRouter(cfg *config.Config, logger *zap.Logger, deps Dependencies) (http.Handler, error) {
	shippingFee, err := domain.ParseMoney(cfg.Payment.ShippingFee)
	if err != nil {
		return nil, fmt.Errorf("invalid shipping fee: %w", err)
	}

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		logger.Warn("JWT_SECRET is not set, using the development secret")
		jwtSecret = developmentJWTSecret
	}

	completer := deps.Completer
	if completer == nil {
		completer = ai.Unavailable{}
	}
	gateway := deps.Gateway
	if gateway == nil {
		gateway = payment.NewMockGateway()
	}

	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	if cfg.RateLimit.Enabled && deps.Redis != nil {
		router.Use(custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			KeyPrefix:         "shophub:ratelimit",
		}, logger))
	}

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{"status": "ok"}
		status := http.StatusOK
		if deps.Database != nil {
			health := deps.Database.Health()
			body["database"] = health
			if health["status"] != "up" {
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
		custommiddleware.RespondWithJSON(w, status, body)
	})

	store := deps.Storage
	assistant := ai.NewAssistant(completer, logger)

	// Initialize services
	userService := service.NewUserService(store, store, service.TokenConfig{
		Secret:        jwtSecret,
		AccessExpiry:  time.Duration(cfg.JWT.AccessExpiry) * time.Minute,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiry) * 24 * time.Hour,
	})
	catalogService := service.NewCatalogService(store, store, assistant, logger)
	reviewService := service.NewReviewService(store, catalogService, assistant)
	cartService := service.NewCartService(store, store, store, shippingFee)
	orderService := service.NewOrderService(store, store, store, gateway, service.PaymentOptions{
		ShippingFee: shippingFee,
		Currency:    cfg.Payment.Currency,
		CallbackURL: cfg.Payment.CallbackURL,
	}, logger)

	authMiddleware := custommiddleware.AuthMiddleware(userService, logger)

	// Register routes
	transport.NewAuthHandler(userService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewCatalogHandler(catalogService, reviewService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewCartHandler(cartService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewOrderHandler(orderService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewDashboardHandler(userService, catalogService, orderService, logger).RegisterRoutes(router, authMiddleware)

	return router, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.deps.Database != nil {
		if err := s.deps.Database.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
