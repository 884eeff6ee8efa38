// Package config provides Viper-based configuration loading for the health
// daemon and its tools.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File, when set, receives log output through a rotating writer
	// instead of stderr.
	File string `mapstructure:"file"`
	// MaxSizeMB is the size a log file reaches before it is rotated.
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `mapstructure:"max_backups"`
}

// HealthConfig holds wound engine and heartbeat settings.
type HealthConfig struct {
	// TickInterval is the wall-clock period of the health heartbeat.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// ContentDir holds body template YAML files.
	ContentDir string `mapstructure:"content_dir"`
	// ScriptDir, when set, holds Lua health strategies.
	ScriptDir string `mapstructure:"script_dir"`
	// TablesFile, when set, overrides the compiled-in wound tables.
	TablesFile string `mapstructure:"tables_file"`
	// StrategyFile, when set, overrides the compiled-in healing quanta.
	StrategyFile string `mapstructure:"strategy_file"`
	// MaxOffline caps the elapsed time a reconnecting body catches up.
	MaxOffline time.Duration `mapstructure:"max_offline"`
	// OfflineEnabled turns reconnect catch-up on.
	OfflineEnabled bool `mapstructure:"offline_enabled"`
	// FlushEvery is the number of heartbeat ticks between store flushes.
	FlushEvery int `mapstructure:"flush_every"`
	// Seed, when non-zero, makes all dice deterministic.
	Seed int64 `mapstructure:"seed"`
	// InstructionLimit bounds each Lua hook call. Zero uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// StatusConfig holds the gRPC health-check endpoint settings.
type StatusConfig struct {
	// GRPCHost is the bind address of the grpc.health.v1 service.
	GRPCHost string `mapstructure:"grpc_host"`
	// GRPCPort is the TCP port of the grpc.health.v1 service.
	GRPCPort int `mapstructure:"grpc_port"`
	// ProbeInterval is how often readiness is re-evaluated.
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
	// ProbeTimeout bounds each dependency probe.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// Addr returns the "host:port" gRPC address.
func (s StatusConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.GRPCHost, s.GRPCPort)
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Health   HealthConfig   `mapstructure:"health"`
	Status   StatusConfig   `mapstructure:"status"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateHealth(c.Health); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStatus(c.Status); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.File != "" && l.MaxSizeMB < 1 {
		return fmt.Errorf("logging.max_size_mb must be >= 1 when logging.file is set, got %d", l.MaxSizeMB)
	}
	if l.MaxBackups < 0 {
		return errors.New("logging.max_backups must not be negative")
	}
	return nil
}

func validateHealth(h HealthConfig) error {
	var errs []string
	if h.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("health.tick_interval must be > 0, got %s", h.TickInterval))
	}
	if h.ContentDir == "" {
		errs = append(errs, "health.content_dir must not be empty")
	}
	if h.MaxOffline < 0 {
		errs = append(errs, "health.max_offline must not be negative")
	}
	if h.FlushEvery < 1 {
		errs = append(errs, fmt.Sprintf("health.flush_every must be >= 1, got %d", h.FlushEvery))
	}
	if h.InstructionLimit < 0 {
		errs = append(errs, "health.instruction_limit must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStatus(s StatusConfig) error {
	var errs []string
	if s.GRPCHost == "" {
		errs = append(errs, "status.grpc_host must not be empty")
	}
	if s.GRPCPort < 1 || s.GRPCPort > 65535 {
		errs = append(errs, fmt.Sprintf("status.grpc_port must be 1-65535, got %d", s.GRPCPort))
	}
	if s.ProbeInterval <= 0 {
		errs = append(errs, fmt.Sprintf("status.probe_interval must be > 0, got %s", s.ProbeInterval))
	}
	if s.ProbeTimeout <= 0 || s.ProbeTimeout > s.ProbeInterval {
		errs = append(errs, fmt.Sprintf("status.probe_timeout must be in (0, probe_interval], got %s", s.ProbeTimeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with MUD_ prefix
	v.SetEnvPrefix("MUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the compiled-in defaults.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "mud")
	v.SetDefault("database.password", "mud")
	v.SetDefault("database.name", "mud")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)

	v.SetDefault("health.tick_interval", "1m")
	v.SetDefault("health.content_dir", "content/bodies")
	v.SetDefault("health.max_offline", "168h")
	v.SetDefault("health.offline_enabled", true)
	v.SetDefault("health.flush_every", 5)

	v.SetDefault("status.grpc_host", "127.0.0.1")
	v.SetDefault("status.grpc_port", 50051)
	v.SetDefault("status.probe_interval", "10s")
	v.SetDefault("status.probe_timeout", "2s")
}
