package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/finbook-app/finbook/internal/api/handlers"
	"github.com/finbook-app/finbook/internal/api/middleware"
	"github.com/finbook-app/finbook/internal/auth"
	"github.com/finbook-app/finbook/internal/events"
	"github.com/finbook-app/finbook/internal/service"
	"github.com/finbook-app/finbook/internal/store"
	"github.com/finbook-app/finbook/pkg/logger"
	"github.com/finbook-app/finbook/pkg/redisx"
)

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	logger         *logger.Logger
	redisClient    *redisx.Client
	mux            *http.ServeMux
	publisher      events.Publisher
	userHandler    *handlers.UserHandler
	financeHandler *handlers.FinanceHandler
	authMiddleware *middleware.AuthMiddleware
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port          int           `json:"port"`
	Host          string        `json:"host"`
	ReadTimeout   time.Duration `json:"read_timeout"`
	WriteTimeout  time.Duration `json:"write_timeout"`
	IdleTimeout   time.Duration `json:"idle_timeout"`
	JWTSecret     string        `json:"-"`
	JWTIssuer     string        `json:"jwt_issuer"`
	JWTExpiration time.Duration `json:"jwt_expiration"`
	EventsEnabled bool          `json:"events_enabled"`
}

// NewServer creates the HTTP server and wires the full stack: the
// Redis document store, the services, the event publisher, and the
// handlers.
func NewServer(config ServerConfig, log *logger.Logger, redisClient *redisx.Client) (*Server, error) {
	mux := http.NewServeMux()
	apiLogger := log.WithComponent("api")

	documentStore := store.NewRedisStore(redisClient.Client, log)

	var publisher events.Publisher = events.NoopPublisher{}
	if config.EventsEnabled {
		redisPublisher, err := events.NewRedisPublisher(redisClient.Client, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create event publisher: %w", err)
		}
		publisher = redisPublisher
	}

	revenueService := service.NewRevenueService(documentStore, log)
	expenseService := service.NewExpenseService(documentStore, log)
	userService := service.NewUserService(documentStore, revenueService, expenseService, publisher, log)

	jwtService := auth.NewJWTService(config.JWTSecret, config.JWTIssuer, config.JWTExpiration)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, apiLogger)

	server := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Handler:      mux,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger:         apiLogger,
		redisClient:    redisClient,
		mux:            mux,
		publisher:      publisher,
		userHandler:    handlers.NewUserHandler(apiLogger, userService, jwtService),
		financeHandler: handlers.NewFinanceHandler(apiLogger, revenueService, expenseService),
		authMiddleware: authMiddleware,
	}

	server.setupRoutes()
	server.setupMiddleware()

	return server, nil
}

// setupRoutes configures the server routes
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.healthCheckHandler)

	// Swagger documentation endpoint
	s.mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Auth endpoints (open)
	s.mux.HandleFunc("POST /api/v1/auth/register", s.userHandler.HandleRegister)
	s.mux.HandleFunc("POST /api/v1/auth/login", s.userHandler.HandleLogin)

	// User endpoints (JWT auth required)
	s.mux.Handle("GET /api/v1/users", s.authMiddleware.RequireAuth(http.HandlerFunc(s.userHandler.HandleList)))
	s.mux.Handle("GET /api/v1/users/{id}", s.authMiddleware.RequireAuth(http.HandlerFunc(s.userHandler.HandleGet)))
	s.mux.Handle("PUT /api/v1/users/{id}", s.authMiddleware.RequireAuth(http.HandlerFunc(s.userHandler.HandleUpdate)))
	s.mux.Handle("DELETE /api/v1/users/{id}", s.authMiddleware.RequireAuth(http.HandlerFunc(s.userHandler.HandleDelete)))

	// Revenue endpoints (JWT auth required)
	s.mux.Handle("GET /api/v1/revenues", s.authMiddleware.RequireAuth(http.HandlerFunc(s.financeHandler.HandleListRevenues)))
	s.mux.Handle("POST /api/v1/revenues", s.authMiddleware.RequireAuth(http.HandlerFunc(s.financeHandler.HandleAddRevenue)))
	s.mux.Handle("GET /api/v1/revenues/{id}", s.authMiddleware.RequireAuth(http.HandlerFunc(s.financeHandler.HandleGetRevenue)))
	s.mux.Handle("PUT /api/v1/revenues/{id}", s.authMiddleware.RequireAuth(http.HandlerFunc(s.financeHandler.HandleUpdateRevenue)))
	s.mux.Handle("DELETE /api/v1/revenues/{id}", s.authMiddleware.RequireAuth(http.HandlerFunc(s.financeHandler.HandleDeleteRevenue)))

	// Expense endpoints (JWT auth required)
	s.mux.Handle("GET /api/v1/expenses", s.authMiddleware.RequireAuth(http.HandlerFunc(s.financeHandler.HandleListExpenses)))
	s.mux.Handle("POST /api/v1/expenses", s.authMiddleware.RequireAuth(http.HandlerFunc(s.financeHandler.HandleAddExpense)))
	s.mux.Handle("GET /api/v1/expenses/{id}", s.authMiddleware.RequireAuth(http.HandlerFunc(s.financeHandler.HandleGetExpense)))
	s.mux.Handle("PUT /api/v1/expenses/{id}", s.authMiddleware.RequireAuth(http.HandlerFunc(s.financeHandler.HandleUpdateExpense)))
	s.mux.Handle("DELETE /api/v1/expenses/{id}", s.authMiddleware.RequireAuth(http.HandlerFunc(s.financeHandler.HandleDeleteExpense)))
}

// setupMiddleware applies the middleware chain to all routes
func (s *Server) setupMiddleware() {
	middlewareChain := middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RateLimit(s.logger),
		middleware.CORS(),
		middleware.Logging(s.logger),
	)

	s.httpServer.Handler = middlewareChain(s.mux)
}

// healthCheckHandler reports server and store health
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.redisClient.HealthCheck(ctx); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"status":"unavailable"}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

// Start runs the server until the context is cancelled, then shuts
// down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.publisher.Close(); err != nil {
		s.logger.Warn("Failed to close event publisher", zap.Error(err))
	}

	return s.httpServer.Shutdown(shutdownCtx)
}
