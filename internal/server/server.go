package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/muurk/printbridge/internal/discovery"
	"github.com/muurk/printbridge/internal/logging"
	"github.com/muurk/printbridge/internal/printing"
	"github.com/muurk/printbridge/internal/version"
	"go.uber.org/zap"
)

const (
	// DefaultHost is the loopback bind address used when none is configured
	DefaultHost = "127.0.0.1"

	// DefaultPort is the fixed port used when --output-port is not set
	DefaultPort = 6789

	// shutdownGrace is how long in-flight requests get to finish
	shutdownGrace = 10 * time.Second
)

// Config holds the service configuration
type Config struct {
	Host       string
	Port       int
	OutputPort bool // Bind an ephemeral port and announce it on stdout
	Debug      bool
	LogLevel   string
	MDNS       bool             // Register the service via mDNS after binding
	Backend    printing.Backend // Platform backend is selected when nil
}

// Server represents the PrintBridge HTTP service
type Server struct {
	config     *Config
	backend    printing.Backend
	backendMu  sync.Mutex // platform printing calls never run concurrently
	httpServer *http.Server
	listener   net.Listener
	hub        *Hub
	announcer  *discovery.Announcer
	announce   io.Writer // destination of the PORT: handshake line
	startTime  time.Time

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	level := config.LogLevel
	if level == "" && config.Debug {
		level = "debug"
	}
	if err := logging.Initialize(level); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	backend := config.Backend
	if backend == nil {
		backend = printing.NewBackend(logging.GetLogger())
	}

	return &Server{
		config:     config,
		backend:    backend,
		hub:        NewHub(),
		announce:   os.Stdout,
		shutdownCh: make(chan struct{}),
	}, nil
}

// Start binds the listener, announces the port when configured, and blocks
// until shutdown. The PORT: line is written before the first request can be
// served; a launching parent reads it to learn the bound port.
func (s *Server) Start() error {
	addr := s.listenAddr()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = time.Now()

	port := s.Port()
	if s.config.OutputPort {
		// Stdout carries only this marker line; all diagnostics go to
		// stderr through the logger.
		fmt.Fprintf(s.announce, "PORT:%d\n", port)
	}

	logging.LogServiceStart(listener.Addr().String(), version.Version, s.config.OutputPort, s.config.Debug)

	if s.config.MDNS {
		announcer, err := discovery.Announce("", port)
		if err != nil {
			// Registration failure must never block startup.
			logging.Warn("mDNS registration failed", zap.Error(err))
		} else {
			s.announcer = announcer
			logging.Info("Registered mDNS service",
				zap.String("type", discovery.ServiceType),
				zap.Int("port", port),
			)
		}
	}

	go s.hub.Run()

	s.httpServer = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(listener)
	}()

	// Wait for a shutdown trigger or a serve error
	select {
	case sig := <-sigChan:
		logging.Info("Shutdown signal received, stopping service...",
			zap.String("signal", sig.String()),
		)
		return s.Shutdown(context.Background())
	case <-s.shutdownCh:
		logging.Info("Shutdown requested over HTTP, stopping service...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Shutdown gracefully stops the service: mDNS deregisters, event
// subscribers are disconnected, and in-flight requests get shutdownGrace
// to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down service...")

	if s.announcer != nil {
		s.announcer.Shutdown()
	}
	s.hub.Close()

	var err error
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
		defer cancel()
		err = s.httpServer.Shutdown(shutdownCtx)
	}

	logging.Info("Service stopped")
	logging.Sync()
	return err
}

// Port reports the bound port. Before Start it reports the configured port.
func (s *Server) Port() int {
	if s.listener == nil {
		return s.config.Port
	}
	if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return s.config.Port
}

// requestShutdown triggers the graceful stop path exactly once.
func (s *Server) requestShutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)
	})
}

func (s *Server) listenAddr() string {
	host := s.config.Host
	if host == "" {
		host = DefaultHost
	}
	if s.config.OutputPort {
		// Port 0 asks the kernel for an ephemeral port.
		return net.JoinHostPort(host, "0")
	}
	port := s.config.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (s *Server) host() string {
	if s.config.Host == "" {
		return DefaultHost
	}
	return s.config.Host
}
