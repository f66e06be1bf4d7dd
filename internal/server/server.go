// Package server wires the router, middleware and handlers together and runs
// the HTTP server.
//
// Composition:
//
//	main.go opens the store → server.New(cfg, logger, store)
//	  store.Partners() → PartnerService → PartnerHandler
//	  store.Requests() → RequestService → RequestHandler
//	  store            → HealthHandler (ping)
//
// The store is opened once by the caller and shared by every request; the
// server owns it from New onwards and closes it on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tamy417/study-partner-server/internal/handler"
	"github.com/tamy417/study-partner-server/internal/middleware"
	"github.com/tamy417/study-partner-server/internal/repository"
	"github.com/tamy417/study-partner-server/internal/service"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "study-partner-server"

type Config struct {
	Port               int
	CORSAllowedOrigins []string
	RateLimitRPM       int  // 0 disables rate limiting
	TrustProxy         bool // take the client IP from X-Forwarded-For / X-Real-IP
	Version            string
}

type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	store   repository.Store
	limiter *middleware.LimiterStore // nil when rate limiting is off
}

// New builds the router on top of an already connected store.
func New(cfg Config, logger *slog.Logger, store repository.Store) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}
	if cfg.RateLimitRPM > 0 {
		s.limiter = middleware.NewLimiterStore(cfg.RateLimitRPM, cfg.RateLimitRPM, time.Minute)
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes registers middleware and routes.
//
// GET    /                  → liveness text
// GET    /healthz           → health JSON with store ping
// POST   /partners          → create partner
// GET    /partners          → list partners (?subject=&sort=)
// GET    /topPartners       → six best rated partners
// GET    /partners/{id}     → one partner
// GET    /myConnections     → partners by exact ?email=
// PUT    /partners/{id}     → replace partner fields
// PATCH  /sendRequest/{id}  → increment partnerCount
// DELETE /partners/{id}     → delete partner
// POST   /requests          → create request
// GET    /requests          → requests by ?email=
// PUT    /requests/{id}     → merge request fields
// DELETE /requests/{id}     → delete request
//
// MIDDLEWARE ORDER MATTERS:
// Middleware runs in the order it is added, outermost first:
//  1. RequestID: every later log line and response carries X-Request-Id
//  2. RealIP (only with TrustProxy): rewrites RemoteAddr from proxy headers
//  3. Logger: wraps everything below, so it also logs 429s and recovered panics
//  4. Recoverer: turns a panic into a 500 instead of killing the connection
//  5. CORS: answers preflights and adds headers, including on 429 responses
//  6. RateLimit (only with RateLimitRPM > 0): last, so rejected requests were
//     already logged and carry CORS headers the browser can read
//
// WHY IS RealIP OPTIONAL?
// RealIP trusts X-Forwarded-For, X-Real-IP and True-Client-IP as sent. Without
// a proxy in front that overwrites them, any client can put a fresh address
// in each request and the rate limiter, which keys on RemoteAddr, would see a
// new client every time. So the socket address is used unless the deployment
// says a trusted proxy sets those headers.
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	if s.config.TrustProxy {
		s.router.Use(chimiddleware.RealIP)
	}
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if s.limiter != nil {
		s.router.Use(middleware.RateLimit(s.limiter))
	}

	healthHandler := handler.NewHealthHandler(ServiceName, s.config.Version, s.store)
	s.router.Get("/", healthHandler.HandleRoot)
	s.router.Get("/healthz", healthHandler.HandleHealth)

	partnerService := service.NewPartnerService(s.store.Partners(), s.logger)
	partnerHandler := handler.NewPartnerHandler(partnerService, s.logger)

	s.router.Route("/partners", func(r chi.Router) {
		r.Post("/", partnerHandler.HandleCreate)
		r.Get("/", partnerHandler.HandleList)
		r.Get("/{id}", partnerHandler.HandleGet)
		r.Put("/{id}", partnerHandler.HandleReplace)
		r.Delete("/{id}", partnerHandler.HandleDelete)
	})
	s.router.Get("/topPartners", partnerHandler.HandleTop)
	s.router.Get("/myConnections", partnerHandler.HandleConnections)
	s.router.Patch("/sendRequest/{id}", partnerHandler.HandleSendRequest)

	requestService := service.NewRequestService(s.store.Requests(), s.logger)
	requestHandler := handler.NewRequestHandler(requestService, s.logger)

	s.router.Route("/requests", func(r chi.Router) {
		r.Post("/", requestHandler.HandleCreate)
		r.Get("/", requestHandler.HandleList)
		r.Put("/{id}", requestHandler.HandleUpdate)
		r.Delete("/{id}", requestHandler.HandleDelete)
	})
}

// Start serves HTTP until SIGINT/SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes the store.
func (s *Server) Start() error {
	defer s.close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.Bool("rate_limited", s.limiter != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// close releases the limiter goroutine and the store connection.
func (s *Server) close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.Close(ctx); err != nil {
		s.logger.Error("failed to close store", slog.String("error", err.Error()))
	}
}
