package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolroom/loantrack/shell/config"
)

func Test_Load_AppliesDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "loantrackd", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "loan_events", cfg.Database.EventsTable)
	assert.Equal(t, 72*time.Hour, cfg.Loans.GracePeriod)
	assert.Equal(t, 5*time.Minute, cfg.Loans.SweepInterval)
	assert.Equal(t, "25.00", cfg.Loans.DefaultChargeAmount)
	assert.Equal(t, 5, cfg.Billing.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Billing.BaseDelay)
	assert.Equal(t, 1024, cfg.Gateway.DedupWindowSize)
	assert.Equal(t, "info", cfg.Log.Level)
}

func Test_Load_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LOANTRACK_DATABASE_HOST", "db.internal")
	t.Setenv("LOANTRACK_DATABASE_PORT", "5433")
	t.Setenv("LOANTRACK_LOANS_GRACE_PERIOD", "48h")
	t.Setenv("LOANTRACK_BILLING_MAX_ATTEMPTS", "3")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 48*time.Hour, cfg.Loans.GracePeriod)
	assert.Equal(t, 3, cfg.Billing.MaxAttempts)
}

func Test_Load_RejectsMinConnsAboveMaxConns(t *testing.T) {
	t.Setenv("LOANTRACK_DATABASE_MAX_CONNS", "5")
	t.Setenv("LOANTRACK_DATABASE_MIN_CONNS", "10")

	_, err := config.Load()

	assert.ErrorContains(t, err, "min_conns")
}

func Test_Load_ProductionRequiresPasswordAndTLS(t *testing.T) {
	t.Setenv("LOANTRACK_APP_ENV", "production")

	_, err := config.Load()

	assert.ErrorContains(t, err, "password")

	t.Setenv("LOANTRACK_DATABASE_PASSWORD", "secret")

	_, err = config.Load()

	assert.ErrorContains(t, err, "sslmode")
}

func Test_DatabaseConfig_DSN(t *testing.T) {
	db := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "loantrack",
		SSLMode:  "disable",
	}

	dsn := db.DSN()

	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "loantrack")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.NotContains(t, dsn, "p@ss/word", "password must be URL-escaped")
}

func Test_DatabaseConfig_ReplicaDSN(t *testing.T) {
	db := config.DatabaseConfig{
		Host:    "primary",
		Port:    5432,
		User:    "postgres",
		DBName:  "loantrack",
		SSLMode: "disable",
	}

	assert.Empty(t, db.ReplicaDSN(), "no replica configured")

	db.ReplicaHost = "replica"
	db.ReplicaPort = 5433

	assert.Contains(t, db.ReplicaDSN(), "replica:5433")
}
