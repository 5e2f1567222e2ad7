package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/aidea/website-api/internal/config"
	"github.com/aidea/website-api/internal/service/contact"
)

// Deps are the collaborators the API serves. DB may be nil when the
// contact store is not configured.
type Deps struct {
	Contact      *contact.Service
	DB           *sql.DB
	MailProvider string
	// Identity is sent as X-Server-Binary so the stub server is
	// distinguishable from production.
	Identity string
}

// Server represents the API server
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	handlers := NewHandlers(deps.Contact, cfg.ExposeErrorDetails)
	health := NewHealthChecker(deps.DB, deps.Contact.Configured(), deps.MailProvider)

	identity := deps.Identity
	if identity == "" {
		identity = "cmd/server"
	}

	return &Server{
		config:  cfg,
		handler: SetupRoutes(handlers, health, cfg.AllowedOrigins, identity),
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Store and mail timeouts run inside one request.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
