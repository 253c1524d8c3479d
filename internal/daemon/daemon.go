package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/harun/nanoboard/internal/config"
	"github.com/harun/nanoboard/internal/logger"
	"github.com/harun/nanoboard/internal/metrics"
	"github.com/harun/nanoboard/internal/observability"
	"github.com/harun/nanoboard/internal/tracing"
	"github.com/harun/nanoboard/pkg/auth"
	"github.com/harun/nanoboard/pkg/configstore"
	"github.com/harun/nanoboard/pkg/cron"
	"github.com/harun/nanoboard/pkg/gateway"
	"github.com/harun/nanoboard/pkg/memory"
	"github.com/harun/nanoboard/pkg/resource"
	"github.com/harun/nanoboard/pkg/sandbox"
	"github.com/harun/nanoboard/pkg/session"
	"github.com/harun/nanoboard/pkg/skill"
	"github.com/harun/nanoboard/pkg/store"
	"github.com/harun/nanoboard/pkg/workspace"
)

// Daemon wires the managed directory, the gateway and the watcher together.
type Daemon struct {
	config  *config.Config
	logger  *logger.Logger
	metrics *metrics.Metrics

	// Core modules
	files    *workspace.Browser
	memories *memory.Manager
	sessions *session.Manager
	skills   *skill.Manager
	jobs     *cron.Manager
	configs  *configstore.Manager
	auth     *auth.Service

	// Services
	gatewayServer *gateway.Server
	watcher       *workspace.Watcher
	hub           *workspace.Hub

	lifecycle *LifecycleManager

	startTime time.Time
	running   bool
	mu        sync.RWMutex
}

// Status represents daemon status
type Status struct {
	Running   bool
	Uptime    time.Duration
	StartTime time.Time
}

// New creates a new daemon instance
func New(cfg *config.Config, log *logger.Logger) (*Daemon, error) {
	d := &Daemon{
		config:  cfg,
		logger:  log,
		metrics: metrics.NewMetrics(),
	}

	if cfg.AuditLog != "" {
		if err := observability.InitAuditLogger(cfg.AuditLog); err != nil {
			log.Warn().Err(err).Str("path", cfg.AuditLog).Msg("Failed to open audit log, auditing to stderr")
		}
	}

	if err := d.initializeCoreModules(); err != nil {
		return nil, err
	}
	if err := d.initializeServices(); err != nil {
		return nil, err
	}

	d.lifecycle = NewLifecycleManager(d)
	return d, nil
}

// initializeCoreModules builds one sandbox root per namespace and the
// managers on top of them.
func (d *Daemon) initializeCoreModules() error {
	cfg := d.config

	baseRoot, err := sandbox.NewRoot(cfg.Paths.BaseDir)
	if err != nil {
		return fmt.Errorf("base dir: %w", err)
	}
	d.files = workspace.NewBrowser(baseRoot, d.logger.Component("files"))

	memoryRoot, err := sandbox.NewRoot(filepath.Join(cfg.WorkspaceDir(), "memory"))
	if err != nil {
		return fmt.Errorf("memory dir: %w", err)
	}
	d.memories = memory.NewManager(resource.NewResolver(memoryRoot), d.logger.Component("memory"))

	sessionRoot, err := sandbox.NewRoot(filepath.Join(cfg.WorkspaceDir(), "sessions"))
	if err != nil {
		return fmt.Errorf("sessions dir: %w", err)
	}
	d.sessions = session.NewManager(resource.NewResolver(sessionRoot), d.logger.Component("session"))

	skillRoot, err := sandbox.NewRoot(filepath.Join(cfg.WorkspaceDir(), "skills"))
	if err != nil {
		return fmt.Errorf("skills dir: %w", err)
	}
	registry, err := store.New(store.Options{
		Root:        skillRoot,
		File:        skill.RegistryFile,
		Key:         "skills",
		AbsentShape: store.Wrapped,
		Name:        "skills",
		Logger:      d.logger.Component("store"),
		Metrics:     d.metrics,
	})
	if err != nil {
		return fmt.Errorf("skill registry: %w", err)
	}
	d.skills = skill.NewManager(resource.NewResolver(skillRoot), registry, d.logger.Component("skill"))

	cronRoot, err := sandbox.NewRoot(cfg.CronDir())
	if err != nil {
		return fmt.Errorf("cron dir: %w", err)
	}
	jobStore, err := store.New(store.Options{
		Root:        cronRoot,
		File:        "jobs.json",
		Key:         "jobs",
		AbsentShape: store.Bare,
		Name:        "jobs",
		IDPrefix:    "job_",
		Logger:      d.logger.Component("store"),
		Metrics:     d.metrics,
	})
	if err != nil {
		return fmt.Errorf("job store: %w", err)
	}
	d.jobs = cron.NewManager(jobStore, d.logger.Component("cron"))

	configRoot, err := sandbox.NewRoot(filepath.Dir(cfg.ManagedConfigFile()))
	if err != nil {
		return fmt.Errorf("config dir: %w", err)
	}
	d.configs, err = configstore.NewManager(configstore.Options{
		Root:         configRoot,
		File:         filepath.Base(cfg.ManagedConfigFile()),
		HistoryLimit: cfg.Paths.HistoryLimit,
		Logger:       d.logger.Component("configstore"),
	})
	if err != nil {
		return fmt.Errorf("config store: %w", err)
	}

	if cfg.Auth.Password == "" {
		d.logger.Warn().Msg("No password configured, every login will be refused")
	}
	d.auth = auth.NewService(auth.Config{
		Password:  cfg.Auth.Password,
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
		Throttle: auth.ThrottleConfig{
			MaxAttempts: cfg.Auth.MaxAttempts,
			Window:      cfg.Auth.Window,
			Block:       cfg.Auth.Block,
		},
	}, d.metrics, d.logger.Component("auth"))

	return nil
}

func (d *Daemon) initializeServices() error {
	cfg := d.config

	if cfg.Watch.Enabled {
		d.hub = workspace.NewHub(64)
		watcher, err := workspace.NewWatcher(workspace.WatcherConfig{
			Root:     d.files.Root().Dir(),
			Debounce: cfg.Watch.Debounce,
			OnEvent:  d.hub.Publish,
			Metrics:  d.metrics,
			Logger:   d.logger.Component("watcher"),
		})
		if err != nil {
			return fmt.Errorf("failed to create workspace watcher: %w", err)
		}
		d.watcher = watcher
	}

	server, err := gateway.NewServer(gateway.Config{
		Addr:            cfg.Addr(),
		StaticDir:       cfg.Server.StaticDir,
		CORSOrigins:     cfg.Server.CORSOrigins,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		SweepInterval:   cfg.Auth.SweepInterval,
		Auth:            d.auth,
		Files:           d.files,
		Memories:        d.memories,
		Sessions:        d.sessions,
		Skills:          d.skills,
		Jobs:            d.jobs,
		Configs:         d.configs,
		Hub:             d.hub,
		Metrics:         d.metrics,
		Logger:          d.logger.Component("gateway"),
	})
	if err != nil {
		return fmt.Errorf("failed to create gateway server: %w", err)
	}
	d.gatewayServer = server
	return nil
}

// Start starts the daemon service
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.startTime = time.Now()
	d.mu.Unlock()

	logger := d.logger.Zerolog().With().Str("trace_id", tracing.NewTraceID()).Logger()
	logger.Info().Str("base_dir", d.files.Root().Dir()).Msg("Starting nanoboard")

	if err := d.lifecycle.Start(); err != nil {
		d.setStopped()
		return fmt.Errorf("failed to start lifecycle manager: %w", err)
	}

	if d.watcher != nil {
		if err := d.watcher.Start(); err != nil {
			logger.Warn().Err(err).Msg("Failed to start workspace watcher, live updates disabled")
		} else {
			logger.Info().Msg("Workspace watcher started")
		}
	}

	if err := d.gatewayServer.Start(); err != nil {
		if d.watcher != nil {
			_ = d.watcher.Stop()
		}
		_ = d.lifecycle.Stop()
		d.setStopped()
		return fmt.Errorf("failed to start gateway server: %w", err)
	}

	logger.Info().Str("addr", d.gatewayServer.Addr()).Msg("Nanoboard started")
	return nil
}

// Stop stops the daemon service gracefully
func (d *Daemon) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is not running")
	}
	d.running = false
	d.mu.Unlock()

	logger := d.logger.Zerolog().With().Str("trace_id", tracing.NewTraceID()).Logger()
	logger.Info().Msg("Stopping nanoboard")

	if err := d.gatewayServer.Stop(context.Background()); err != nil {
		logger.Error().Err(err).Msg("Failed to stop gateway server")
	}

	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			logger.Error().Err(err).Msg("Failed to stop workspace watcher")
		}
	}
	if d.hub != nil {
		d.hub.Close()
	}

	if err := d.lifecycle.Stop(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop lifecycle manager")
	}

	if err := observability.GetAuditLogger().Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close audit logger")
	}

	logger.Info().Msg("Nanoboard stopped")
	return nil
}

func (d *Daemon) setStopped() {
	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
}

// Status returns the daemon status
func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := Status{
		Running: d.running,
	}

	if d.running {
		status.Uptime = time.Since(d.startTime)
		status.StartTime = d.startTime
	}

	return status
}

// Wait blocks until SIGINT or SIGTERM, then stops the daemon.
func (d *Daemon) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sig := <-sigChan
	d.logger.Info().Str("signal", sig.String()).Msg("Received signal")

	if err := d.Stop(); err != nil {
		d.logger.Error().Err(err).Msg("Failed to stop daemon")
	}
}

// GetConfig returns the daemon configuration
func (d *Daemon) GetConfig() *config.Config {
	return d.config
}

// GetGatewayServer returns the gateway server
func (d *Daemon) GetGatewayServer() *gateway.Server {
	return d.gatewayServer
}

// GetMetrics returns the metrics registry wrapper
func (d *Daemon) GetMetrics() *metrics.Metrics {
	return d.metrics
}
