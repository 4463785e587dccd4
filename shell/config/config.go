// Package config loads the loan tracker's tunables from a TOML file and
// environment variables. The grace period, sweep interval, and billing retry
// limits are deliberately configuration, not constants.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Loans    LoansConfig
	Billing  BillingConfig
	Gateway  GatewayConfig
	Log      LogConfig
}

// AppConfig holds application-specific settings.
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds Postgres connection settings for the ledger and the
// billing request queue. ReplicaHost is optional; when set, eventually
// consistent reads are served from the replica.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	ReplicaHost     string
	ReplicaPort     int
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	EventsTable     string
}

// LoansConfig holds loan lifecycle tunables.
type LoansConfig struct {
	// GracePeriod is how long a hold may stand before the sweep expires it
	// and requests a charge.
	GracePeriod time.Duration

	// SweepInterval is how often the sweep looks for overdue holds.
	// Promptness trades against load; there are no per-item timers.
	SweepInterval time.Duration

	// DefaultChargeAmount is the charge requested when a loan moves to
	// AwaitingPayment, as a decimal string (e.g. "25.00").
	DefaultChargeAmount string
}

// BillingConfig holds billing reconciler tunables.
type BillingConfig struct {
	// Endpoint is the base URL of the billing collaborator.
	Endpoint string

	// MaxAttempts bounds automatic charge retries before a loan is flagged
	// for manual review.
	MaxAttempts int

	// BaseDelay is the first retry delay; subsequent delays double.
	BaseDelay time.Duration

	// PollInterval is how often the reconciler processes due requests and
	// polls the collaborator for outcomes.
	PollInterval time.Duration
}

// GatewayConfig holds scan gateway tunables.
type GatewayConfig struct {
	// DedupWindowSize bounds the recent idempotency-token window.
	DedupWindowSize int
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// Load loads configuration from a TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with LOANTRACK_ prefix (e.g., LOANTRACK_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/loantrack")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("LOANTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			ReplicaHost:     v.GetString("database.replica_host"),
			ReplicaPort:     v.GetInt("database.replica_port"),
			MaxConns:        v.GetInt("database.max_conns"),
			MinConns:        v.GetInt("database.min_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			EventsTable:     v.GetString("database.events_table"),
		},
		Loans: LoansConfig{
			GracePeriod:         v.GetDuration("loans.grace_period"),
			SweepInterval:       v.GetDuration("loans.sweep_interval"),
			DefaultChargeAmount: v.GetString("loans.default_charge_amount"),
		},
		Billing: BillingConfig{
			Endpoint:     v.GetString("billing.endpoint"),
			MaxAttempts:  v.GetInt("billing.max_attempts"),
			BaseDelay:    v.GetDuration("billing.base_delay"),
			PollInterval: v.GetDuration("billing.poll_interval"),
		},
		Gateway: GatewayConfig{
			DedupWindowSize: v.GetInt("gateway.dedup_window_size"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "loantrackd"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "loantrack"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.ReplicaPort == 0 {
		cfg.Database.ReplicaPort = cfg.Database.Port
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 25
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.EventsTable == "" {
		cfg.Database.EventsTable = "loan_events"
	}
	if cfg.Loans.GracePeriod == 0 {
		cfg.Loans.GracePeriod = 72 * time.Hour
	}
	if cfg.Loans.SweepInterval == 0 {
		cfg.Loans.SweepInterval = 5 * time.Minute
	}
	if cfg.Loans.DefaultChargeAmount == "" {
		cfg.Loans.DefaultChargeAmount = "25.00"
	}
	if cfg.Billing.Endpoint == "" {
		cfg.Billing.Endpoint = "http://localhost:9400"
	}
	if cfg.Billing.MaxAttempts == 0 {
		cfg.Billing.MaxAttempts = 5
	}
	if cfg.Billing.BaseDelay == 0 {
		cfg.Billing.BaseDelay = 30 * time.Second
	}
	if cfg.Billing.PollInterval == 0 {
		cfg.Billing.PollInterval = 15 * time.Second
	}
	if cfg.Gateway.DedupWindowSize == 0 {
		cfg.Gateway.DedupWindowSize = 1024
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// validate performs validation on the configuration.
func (c *Config) validate() error {
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("database.max_conns must be positive")
	}
	if c.Database.MinConns < 0 {
		return fmt.Errorf("database.min_conns cannot be negative")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) cannot exceed database.max_conns (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Billing.MaxAttempts <= 0 {
		return fmt.Errorf("billing.max_attempts must be positive")
	}
	if c.Gateway.DedupWindowSize <= 0 {
		return fmt.Errorf("gateway.dedup_window_size must be positive")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// DSN returns the primary database connection string with properly escaped values.
func (d *DatabaseConfig) DSN() string {
	return d.buildDSN(d.Host, d.Port)
}

// ReplicaDSN returns the replica connection string, or "" when no replica is configured.
func (d *DatabaseConfig) ReplicaDSN() string {
	if d.ReplicaHost == "" {
		return ""
	}

	return d.buildDSN(d.ReplicaHost, d.ReplicaPort)
}

func (d *DatabaseConfig) buildDSN(host string, port int) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()

	return u.String()
}
