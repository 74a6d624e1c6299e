// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gatearr/gatearr/lib/identity"
	"github.com/gatearr/gatearr/lib/sessiontoken"
)

// Server is the gateway's HTTP front. Session endpoints and /health
// are public; every other path is the authenticated proxy entry.
type Server struct {
	config     *Config
	routes     *RouteTable
	gate       *authGate
	session    *sessionHandler
	forwarder  *forwarder
	bridge     *wsBridge
	logger     *slog.Logger
	httpServer *http.Server
	listener   net.Listener
}

// ServerConfig holds the collaborators a Server is built from.
type ServerConfig struct {
	// Config is the loaded, validated gateway configuration.
	Config *Config

	// Engine issues and verifies session tokens.
	Engine *sessiontoken.Engine

	// Provider is the upstream identity service.
	Provider identity.Provider

	// Logger for request logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewServer wires the gateway components together.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.Engine == nil {
		return nil, fmt.Errorf("token engine is required")
	}
	if config.Provider == nil {
		return nil, fmt.Errorf("identity provider is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	routes, err := NewRouteTable(config.Config.Apps)
	if err != nil {
		return nil, fmt.Errorf("building route table: %w", err)
	}

	timeout := time.Duration(config.Config.RequestTimeoutSeconds) * time.Second

	server := &Server{
		config: config.Config,
		routes: routes,
		gate: &authGate{
			engine:       config.Engine,
			accessCookie: config.Config.Security.AccessCookie,
			loginURL:     config.Config.LoginURL,
			logger:       logger,
		},
		session: &sessionHandler{
			engine:   config.Engine,
			provider: config.Provider,
			security: config.Config.Security,
			logger:   logger,
		},
		forwarder: newForwarder(timeout, logger),
		bridge:    newWSBridge(timeout, logger),
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", server.session.handleLogin)
	mux.HandleFunc("POST /auth/refresh", server.session.handleRefresh)
	mux.HandleFunc("POST /auth/logout", server.session.handleLogout)
	mux.HandleFunc("GET /health", server.session.handleHealth)
	mux.Handle("/", server.gate.wrap(server.handleProxy))

	server.httpServer = &http.Server{
		Handler: mux,
		// No WriteTimeout: WebSocket sessions and long-polling
		// backends outlive any sane fixed bound.
		ReadHeaderTimeout: 30 * time.Second,
	}

	return server, nil
}

// Handler exposes the root handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// handleProxy is the authenticated entry point for all proxied
// traffic: resolve the app from the first path segment, then branch
// to the WebSocket bridge or the HTTP forwarder.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request, ident identity.Identity) {
	appName := firstPathSegment(r.URL.Path)
	if appName == "" {
		// The root has nothing to proxy; send browsers to login.
		http.Redirect(w, r, s.config.LoginURL, http.StatusPermanentRedirect)
		return
	}

	route, err := s.routes.Resolve(appName)
	if err != nil {
		s.logger.Warn("route not found",
			"app", appName,
			"user", ident.DisplayName,
			"available", s.routes.Names(),
		)
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if isWebSocketUpgrade(r) {
		s.bridge.bridge(w, r, route)
		return
	}
	s.forwarder.forward(w, r, route)
}

// firstPathSegment extracts the app name from a request path.
func firstPathSegment(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// Start binds the listen address and serves in the background. The
// actual bound address is available via Addr() afterwards, which lets
// tests listen on port 0.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	s.listener = listener

	s.logger.Info("gateway started",
		"address", listener.Addr().String(),
		"apps", s.routes.Names(),
	)

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", "error", err)
		}
	}()

	// Notify systemd that we're ready (no-op outside systemd).
	notifySystemd("READY=1")

	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the server, letting in-flight exchanges
// finish until ctx expires. Established WebSocket bridges are hijacked
// connections and end when their peers disconnect.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down gateway")
	return s.httpServer.Shutdown(ctx)
}

// notifySystemd sends a state notification to systemd's sd_notify
// socket. Does nothing if NOTIFY_SOCKET is not set.
func notifySystemd(state string) {
	socketPath := os.Getenv("NOTIFY_SOCKET")
	if socketPath == "" {
		return
	}

	conn, err := net.Dial("unixgram", socketPath)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.Write([]byte(state))
}
