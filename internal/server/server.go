package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/oduya/paygo/internal/logging"
)

// Config holds the server configuration
type Config struct {
	Host         string
	Port         int
	CertPath     string // Path to certificate file (TLS from files)
	KeyPath      string // Path to private key file (TLS from files)
	GenerateCert bool   // If true, auto-generate a self-signed certificate
	LogLevel     string
}

// Server is the keycode issuing service
type Server struct {
	config     *Config
	httpServer *http.Server
	tlsConfig  *tls.Config

	mu          sync.Mutex
	activeConns map[string]*websocket.Conn
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	var tlsConfig *tls.Config
	var err error

	switch {
	case config.GenerateCert:
		tlsConfig, err = generateAndLoadCert()
		if err != nil {
			return nil, fmt.Errorf("failed to generate certificate: %w", err)
		}
	case config.CertPath != "" && config.KeyPath != "":
		tlsConfig, err = NewTLSConfig(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	return &Server{
		config:      config,
		tlsConfig:   tlsConfig,
		activeConns: make(map[string]*websocket.Conn),
	}, nil
}

// Routes builds the HTTP handler for the service. Exposed for tests.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/keycodes", s.handleIssueKeycode)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.HandleFunc("/v1/healthz", s.handleHealth)
	return mux
}

// Start starts the server and blocks until shutdown
// logConnState records lifecycle transitions for raw TCP connections.
func logConnState(conn net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		logging.LogConnection(conn.RemoteAddr().String(), "opened")
	case http.StateClosed:
		logging.LogConnection(conn.RemoteAddr().String(), "closed")
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	scheme := "http"
	if s.tlsConfig != nil {
		scheme = "https"
	}
	logging.Info("Starting keycode issuing server",
		zap.String("addr", addr),
		zap.String("scheme", scheme),
		zap.String("log_level", s.config.LogLevel),
	)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		TLSConfig:    s.tlsConfig,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming endpoint manages its own deadlines
		ConnState:    logConnState,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	if s.tlsConfig != nil {
		listener = tls.NewListener(listener, s.tlsConfig)
	}

	logging.Info("Server listening for connections", zap.String("addr", addr))

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		serveErr := s.httpServer.Serve(listener)
		if serveErr == http.ErrServerClosed {
			serveErr = nil
		}
		errChan <- serveErr
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	// Close active WebSocket sessions so Shutdown does not wait on them
	s.mu.Lock()
	for addr, conn := range s.activeConns {
		logging.Info("Closing active stream", zap.String("remote_addr", addr))
		_ = conn.Close()
	}
	s.mu.Unlock()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	if err != nil {
		logging.Warn("Shutdown did not complete cleanly", zap.Error(err))
	} else {
		logging.Info("All connections closed gracefully")
	}

	logging.Sync()
	return err
}

// trackConn registers an active WebSocket session
func (s *Server) trackConn(remoteAddr string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeConns[remoteAddr] = conn
}

// untrackConn removes a finished WebSocket session
func (s *Server) untrackConn(remoteAddr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activeConns, remoteAddr)
}

// ActiveStreams returns the number of active WebSocket sessions
func (s *Server) ActiveStreams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}
