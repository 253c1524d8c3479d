package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

// Config represents the nanoboard gateway configuration
type Config struct {
	// HTTP listener
	Server ServerConfig `json:"server" mapstructure:"server" yaml:"server"`

	// Login and credentials
	Auth AuthConfig `json:"auth" mapstructure:"auth" yaml:"auth"`

	// Managed directory layout
	Paths PathsConfig `json:"paths" mapstructure:"paths" yaml:"paths"`

	// Workspace change notifications
	Watch WatchConfig `json:"watch" mapstructure:"watch" yaml:"watch"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging" yaml:"logging"`

	// Gateway's own state (pid file, audit log)
	DataDir string `json:"data_dir" mapstructure:"data_dir" yaml:"data_dir"`

	// Audit log path, defaults to <data_dir>/audit.log
	AuditLog string `json:"audit_log" mapstructure:"audit_log" yaml:"audit_log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `json:"host" mapstructure:"host" yaml:"host"`
	Port            int           `json:"port" mapstructure:"port" yaml:"port"`
	StaticDir       string        `json:"static_dir" mapstructure:"static_dir" yaml:"static_dir"`
	CORSOrigins     []string      `json:"cors_origins" mapstructure:"cors_origins" yaml:"cors_origins"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// AuthConfig holds the single admin password and login throttle thresholds.
type AuthConfig struct {
	Password      string        `json:"password" mapstructure:"password" yaml:"password"`
	JWTSecret     string        `json:"jwt_secret" mapstructure:"jwt_secret" yaml:"jwt_secret"`
	TokenTTL      time.Duration `json:"token_ttl" mapstructure:"token_ttl" yaml:"token_ttl"`
	MaxAttempts   int           `json:"max_attempts" mapstructure:"max_attempts" yaml:"max_attempts"`
	Window        time.Duration `json:"window" mapstructure:"window" yaml:"window"`
	Block         time.Duration `json:"block" mapstructure:"block" yaml:"block"`
	SweepInterval time.Duration `json:"sweep_interval" mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// PathsConfig locates the managed directory. Empty sub-paths are derived
// from BaseDir.
type PathsConfig struct {
	BaseDir      string `json:"base_dir" mapstructure:"base_dir" yaml:"base_dir"`
	WorkspaceDir string `json:"workspace_dir" mapstructure:"workspace_dir" yaml:"workspace_dir"`
	CronDir      string `json:"cron_dir" mapstructure:"cron_dir" yaml:"cron_dir"`
	ConfigFile   string `json:"config_file" mapstructure:"config_file" yaml:"config_file"`
	HistoryLimit int    `json:"history_limit" mapstructure:"history_limit" yaml:"history_limit"`
}

// WatchConfig controls the workspace watcher
type WatchConfig struct {
	Enabled  bool          `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	Debounce time.Duration `json:"debounce" mapstructure:"debounce" yaml:"debounce"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level" yaml:"level"`
	File      string `json:"file" mapstructure:"file" yaml:"file"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty" yaml:"pretty"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size" yaml:"max_size"` // MB
	MaxAge    int    `json:"max_age" mapstructure:"max_age" yaml:"max_age"`    // days
	Compress  bool   `json:"compress" mapstructure:"compress" yaml:"compress"`
	Redaction bool   `json:"redaction" mapstructure:"redaction" yaml:"redaction"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 5 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL:      7 * 24 * time.Hour,
			MaxAttempts:   10,
			Window:        15 * time.Minute,
			Block:         15 * time.Minute,
			SweepInterval: time.Minute,
		},
		Paths: PathsConfig{
			BaseDir:      "./test_volume",
			HistoryLimit: 20,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Pretty:    true,
			MaxSize:   50,
			MaxAge:    14,
			Compress:  true,
			Redaction: true,
		},
	}
}

// WorkspaceDir is the root for memories, chat sessions and skills.
func (c *Config) WorkspaceDir() string {
	if c.Paths.WorkspaceDir != "" {
		return c.Paths.WorkspaceDir
	}
	return filepath.Join(c.Paths.BaseDir, "workspace")
}

// CronDir holds jobs.json.
func (c *Config) CronDir() string {
	if c.Paths.CronDir != "" {
		return c.Paths.CronDir
	}
	return filepath.Join(c.Paths.BaseDir, "cron")
}

// ManagedConfigFile is the JSON document edited through the config API.
// It is not the gateway's own config file.
func (c *Config) ManagedConfigFile() string {
	if c.Paths.ConfigFile != "" {
		return c.Paths.ConfigFile
	}
	return filepath.Join(c.Paths.BaseDir, "config.json")
}

// Addr returns host:port for the listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Auth.Password != "" {
		out.Auth.Password = "********"
	}
	if out.Auth.JWTSecret != "" {
		out.Auth.JWTSecret = "********"
	}
	out.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	return &out
}

// String returns a JSON representation of the config with secrets masked
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.Redacted(), "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	v := NewValidator()

	if err := v.ValidatePort(c.Server.Port); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if c.Paths.BaseDir == "" {
		return fmt.Errorf("paths.base_dir is required")
	}
	if err := v.ValidateThrottle(c.Auth.MaxAttempts, c.Auth.Window, c.Auth.Block); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if err := v.ValidateLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Paths.HistoryLimit < 0 {
		return fmt.Errorf("paths.history_limit cannot be negative")
	}
	if c.Server.StaticDir != "" {
		if err := v.ValidateDirectory(c.Server.StaticDir); err != nil {
			return fmt.Errorf("server.static_dir: %w", err)
		}
	}
	return nil
}
