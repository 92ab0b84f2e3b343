package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/proshop/proshop/pkg/auth"
	"github.com/proshop/proshop/pkg/httputil"
	"github.com/proshop/proshop/pkg/middleware"
	"github.com/proshop/proshop/pkg/observability"
	"github.com/proshop/proshop/pkg/orders"
	"github.com/proshop/proshop/pkg/products"
	"github.com/proshop/proshop/pkg/uploads"
	"github.com/proshop/proshop/pkg/users"
)

// Options carries the wired dependencies for the API server.
type Options struct {
	Logger        *observability.Logger
	Metrics       *observability.Metrics
	Health        *observability.HealthChecker
	Users         users.Store
	Products      products.Store
	Orders        orders.Store
	Uploads       *uploads.FileStore
	TokenIssuer   *auth.TokenIssuer
	LoginLimiter  middleware.LoginLimiter
	SecureCookies bool
	MaxBodyBytes  int64
}

// Server is the storefront HTTP API.
type Server struct {
	router *mux.Router
}

// NewServer builds the router, middleware chain, and all route groups.
func NewServer(opts Options) *Server {
	if opts.MaxBodyBytes == 0 {
		opts.MaxBodyBytes = 5 << 20
	}

	router := mux.NewRouter()
	router.Use(
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(opts.Logger),
		httputil.LoggingMiddleware(opts.Logger),
		httputil.MaxBytesMiddleware(opts.MaxBodyBytes),
	)
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
	}

	gate := middleware.NewSessionMiddleware(opts.TokenIssuer, opts.Users)
	// protect mirrors the authentication check; admin adds the authorization
	// check behind it. Admin routes are never reachable without both.
	protect := func(h http.HandlerFunc) http.Handler {
		return gate.Handler(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return gate.Handler(middleware.RequireAdmin(h))
	}

	userHandlers := &UserHandlers{
		store:         opts.Users,
		issuer:        opts.TokenIssuer,
		limiter:       opts.LoginLimiter,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		secureCookies: opts.SecureCookies,
	}
	userHandlers.RegisterRoutes(router, protect, admin)

	productHandlers := &ProductHandlers{store: opts.Products, logger: opts.Logger}
	productHandlers.RegisterRoutes(router, protect, admin)

	orderHandlers := &OrderHandlers{store: opts.Orders, logger: opts.Logger}
	orderHandlers.RegisterRoutes(router, protect, admin)

	if opts.Uploads != nil {
		uploadHandlers := &UploadHandlers{store: opts.Uploads, logger: opts.Logger}
		uploadHandlers.RegisterRoutes(router, admin)
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.Uploads.Dir()))))
	}

	if opts.Health != nil {
		router.HandleFunc("/healthz", opts.Health.Liveness).Methods("GET")
		router.HandleFunc("/readyz", opts.Health.Readiness).Methods("GET")
	}
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics.Handler()).Methods("GET")
	}

	return &Server{router: router}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Guard wraps a handler with a middleware chain ending at the handler.
type Guard func(http.HandlerFunc) http.Handler
