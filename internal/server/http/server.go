// Package http exposes the gateway's REST surface: authentication,
// content delta-sync, and signed asset URLs.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/storynest/gateway/internal/limiter"
	"github.com/storynest/gateway/internal/security"
	"github.com/storynest/gateway/internal/service"
	"github.com/storynest/gateway/internal/token"
)

const requestTimeout = 30 * time.Second

// Server wires services into an http.Handler.
type Server struct {
	auth    service.AuthService
	sync    service.SyncService
	assets  service.AssetService
	issuer  *token.TokenIssuer
	monitor *security.Monitor
	logger  *zap.Logger

	authLimiter limiter.RequestLimiter
	apiLimiter  limiter.RequestLimiter
}

// Config carries the server's collaborators.
type Config struct {
	Auth        service.AuthService
	Sync        service.SyncService
	Assets      service.AssetService
	Issuer      *token.TokenIssuer
	Monitor     *security.Monitor
	Logger      *zap.Logger
	AuthLimiter limiter.RequestLimiter
	APILimiter  limiter.RequestLimiter
}

// NewServer constructs the server.
func NewServer(cfg Config) *Server {
	return &Server{
		auth:        cfg.Auth,
		sync:        cfg.Sync,
		assets:      cfg.Assets,
		issuer:      cfg.Issuer,
		monitor:     cfg.Monitor,
		logger:      cfg.Logger,
		authLimiter: cfg.AuthLimiter,
		apiLimiter:  cfg.APILimiter,
	}
}

// Handler builds the route tree. Auth endpoints run under the tighter
// budget; the content and asset endpoints additionally require a bearer
// access token.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)
	r.Use(middleware.Timeout(requestTimeout))

	r.Route("/auth", func(r chi.Router) {
		r.Use(s.rateLimit(s.authLimiter))
		r.Post("/refresh", s.handleRefresh)
		r.Post("/revoke", s.handleRevoke)
		r.With(s.requireAuth).Get("/status", s.handleAuthStatus)
		r.Post("/{provider}", s.handleAuthenticate)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit(s.apiLimiter))
		r.Use(s.requireAuth)

		r.Route("/content", func(r chi.Router) {
			r.Get("/{domain}/version", s.handleVersion)
			r.Post("/{domain}/sync", s.handleSync)
		})
		r.Route("/assets", func(r chi.Router) {
			r.Get("/url", s.handleSignOne)
			r.Post("/urls", s.handleSignBatch)
		})
	})

	return r
}
