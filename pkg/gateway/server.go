package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/harun/nanoboard/internal/metrics"
	"github.com/harun/nanoboard/pkg/auth"
	"github.com/harun/nanoboard/pkg/configstore"
	"github.com/harun/nanoboard/pkg/cron"
	"github.com/harun/nanoboard/pkg/memory"
	"github.com/harun/nanoboard/pkg/sandbox"
	"github.com/harun/nanoboard/pkg/session"
	"github.com/harun/nanoboard/pkg/skill"
	"github.com/harun/nanoboard/pkg/workspace"
	"github.com/rs/zerolog"
)

const apiPrefix = "/api"

// Server is the HTTP gateway in front of the managed directory.
type Server struct {
	addr            string
	shutdownTimeout time.Duration
	sweepInterval   time.Duration
	corsOrigins     []string
	static          *sandbox.Root

	auth     *auth.Service
	files    *workspace.Browser
	memories *memory.Manager
	sessions *session.Manager
	skills   *skill.Manager
	jobs     *cron.Manager
	configs  *configstore.Manager
	hub      *workspace.Hub
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	engine   *gin.Engine
	server   *http.Server
	listener net.Listener
	upgrader websocket.Upgrader
	clients  *WatchRegistry
	startAt  time.Time

	isShuttingDown bool
	shutdownMu     sync.RWMutex
	serveWG        sync.WaitGroup
}

// Config holds server configuration
type Config struct {
	Addr            string
	StaticDir       string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	SweepInterval   time.Duration

	Auth     *auth.Service
	Files    *workspace.Browser
	Memories *memory.Manager
	Sessions *session.Manager
	Skills   *skill.Manager
	Jobs     *cron.Manager
	Configs  *configstore.Manager
	Hub      *workspace.Hub // optional, enables /api/fs/watch
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

// NewServer creates a new gateway server and builds its routes.
func NewServer(cfg Config) (*Server, error) {
	switch {
	case cfg.Auth == nil:
		return nil, fmt.Errorf("auth service is required")
	case cfg.Files == nil:
		return nil, fmt.Errorf("file browser is required")
	case cfg.Memories == nil:
		return nil, fmt.Errorf("memory manager is required")
	case cfg.Sessions == nil:
		return nil, fmt.Errorf("session manager is required")
	case cfg.Skills == nil:
		return nil, fmt.Errorf("skill manager is required")
	case cfg.Jobs == nil:
		return nil, fmt.Errorf("job manager is required")
	case cfg.Configs == nil:
		return nil, fmt.Errorf("config manager is required")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}

	s := &Server{
		addr:            cfg.Addr,
		shutdownTimeout: cfg.ShutdownTimeout,
		sweepInterval:   cfg.SweepInterval,
		corsOrigins:     cfg.CORSOrigins,
		auth:            cfg.Auth,
		files:           cfg.Files,
		memories:        cfg.Memories,
		sessions:        cfg.Sessions,
		skills:          cfg.Skills,
		jobs:            cfg.Jobs,
		configs:         cfg.Configs,
		hub:             cfg.Hub,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		clients:         newWatchRegistry(),
		startAt:         time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			// Browsers cannot set headers on websocket upgrades, so the
			// token travels in the query string and is checked before this.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	if cfg.StaticDir != "" {
		root, err := sandbox.NewRoot(cfg.StaticDir)
		if err != nil {
			return nil, fmt.Errorf("static dir: %w", err)
		}
		s.static = root
	}

	s.engine = s.routes()
	return s, nil
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Clients returns the registry of connected watch clients.
func (s *Server) Clients() *WatchRegistry {
	return s.clients
}

// Addr returns the bound address once Start has returned.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("Starting gateway server")

	s.serveWG.Add(1)
	go func() {
		defer s.serveWG.Done()
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Gateway server error")
		}
	}()

	s.auth.Throttle().StartSweeper(s.sweepInterval, func(remaining int) {
		s.metrics.SetTrackedClients(remaining)
	})
	return nil
}

// Stop drains in-flight requests, bounded by the shutdown timeout, and
// disconnects watch clients.
func (s *Server) Stop(ctx context.Context) error {
	s.shutdownMu.Lock()
	if s.isShuttingDown {
		s.shutdownMu.Unlock()
		return nil
	}
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	s.logger.Info().Msg("Shutting down gateway server")
	s.auth.Throttle().Stop()

	s.clients.CloseAll("server shutting down")

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Shutdown timeout reached, forcing close")
		_ = s.server.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	s.serveWG.Wait()

	s.logger.Info().Msg("Gateway server stopped")
	return nil
}

func (s *Server) shuttingDown() bool {
	s.shutdownMu.RLock()
	defer s.shutdownMu.RUnlock()
	return s.isShuttingDown
}
