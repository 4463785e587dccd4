// Command loantrackd runs the loan tracking core: the scan gateway fed from
// stdin, the billing reconciler, and the hold sweeper, all over one Postgres
// backed loan ledger.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"github.com/toolroom/loantrack/billing"
	"github.com/toolroom/loantrack/gateway"
	"github.com/toolroom/loantrack/ledger/oteladapters"
	"github.com/toolroom/loantrack/ledger/postgresengine"
	"github.com/toolroom/loantrack/shell"
	"github.com/toolroom/loantrack/shell/config"
)

var unmarshal = jsoniter.ConfigFastest

func main() {
	if err := run(); err != nil {
		slog.Error("loantrackd failed", shell.LogAttrError, err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, handler := buildLogger(cfg.Log)
	slog.SetDefault(logger)

	// The otel globals default to noop providers, so metrics and traces are
	// free until an SDK provider is installed. Logs go through the slog
	// handler directly instead of the global LoggerProvider for that reason.
	metricsCollector := oteladapters.NewMetricsCollector(otel.Meter("loantrackd"))
	tracingCollector := oteladapters.NewTracingCollector(otel.Tracer("loantrackd"))
	contextualLogger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eventLedger, cleanup, err := connectLedger(ctx, cfg, logger, observability{
		metrics:          metricsCollector,
		tracing:          tracingCollector,
		contextualLogger: contextualLogger,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	queueDB, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting billing queue database: %w", err)
	}
	defer func() { _ = queueDB.Close() }()

	defaultCharge, err := decimal.NewFromString(cfg.Loans.DefaultChargeAmount)
	if err != nil {
		return fmt.Errorf("parsing loans.default_charge_amount: %w", err)
	}

	scanGateway := gateway.NewGateway(eventLedger, defaultCharge,
		gateway.WithDedupWindowSize(cfg.Gateway.DedupWindowSize),
		gateway.WithMetrics(metricsCollector),
		gateway.WithContextualLogging(contextualLogger),
		gateway.WithLogging(logger),
	)

	reconciler := billing.NewReconciler(
		eventLedger,
		billing.NewPostgresQueue(queueDB),
		billing.NewHTTPCollaborator(cfg.Billing.Endpoint),
		billing.WithMaxAttempts(cfg.Billing.MaxAttempts),
		billing.WithBaseDelay(cfg.Billing.BaseDelay),
		billing.WithPollInterval(cfg.Billing.PollInterval),
		billing.WithReconcilerMetrics(metricsCollector),
		billing.WithReconcilerContextualLogging(contextualLogger),
		billing.WithReconcilerLogging(logger),
	)

	sweeper := billing.NewSweeper(eventLedger, defaultCharge,
		billing.WithGracePeriod(cfg.Loans.GracePeriod),
		billing.WithSweepInterval(cfg.Loans.SweepInterval),
		billing.WithSweeperContextualLogging(contextualLogger),
		billing.WithSweeperLogging(logger),
	)

	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()
		reconciler.Run(ctx)
	}()

	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	logger.Info("loantrackd started",
		"env", cfg.App.Env,
		"grace_period", cfg.Loans.GracePeriod.String(),
		"sweep_interval", cfg.Loans.SweepInterval.String(),
	)

	readScans(ctx, scanGateway, logger)

	stop()
	wg.Wait()

	logger.Info("loantrackd stopped")

	return nil
}

// observability bundles the collectors handed to the ledger and the shell
// components.
type observability struct {
	metrics          shell.MetricsCollector
	tracing          shell.TracingCollector
	contextualLogger shell.ContextualLogger
}

// connectLedger opens the primary pool (and replica, when configured) and
// builds the Postgres loan ledger on top.
func connectLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger, obs observability) (postgresengine.Ledger, func(), error) {
	primary, err := connectPool(ctx, cfg, cfg.Database.DSN())
	if err != nil {
		return postgresengine.Ledger{}, nil, fmt.Errorf("connecting primary database: %w", err)
	}

	options := []postgresengine.Option{
		postgresengine.WithTableName(cfg.Database.EventsTable),
		postgresengine.WithLogger(logger),
		postgresengine.WithContextualLogger(obs.contextualLogger),
		postgresengine.WithMetrics(obs.metrics),
		postgresengine.WithTracing(obs.tracing),
	}

	if replicaDSN := cfg.Database.ReplicaDSN(); replicaDSN != "" {
		replica, replicaErr := connectPool(ctx, cfg, replicaDSN)
		if replicaErr != nil {
			primary.Close()
			return postgresengine.Ledger{}, nil, fmt.Errorf("connecting replica database: %w", replicaErr)
		}

		eventLedger, ledgerErr := postgresengine.NewLedgerFromPGXPoolWithReplica(primary, replica, options...)
		if ledgerErr != nil {
			primary.Close()
			replica.Close()
			return postgresengine.Ledger{}, nil, ledgerErr
		}

		cleanup := func() {
			primary.Close()
			replica.Close()
		}

		return eventLedger, cleanup, nil
	}

	eventLedger, err := postgresengine.NewLedgerFromPGXPool(primary, options...)
	if err != nil {
		primary.Close()
		return postgresengine.Ledger{}, nil, err
	}

	return eventLedger, primary.Close, nil
}

func connectPool(ctx context.Context, cfg *config.Config, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// scanLine is the wire format of one scan delivered on stdin, one JSON
// object per line, straight from the counter's scanner bridge.
type scanLine struct {
	Barcode    string `json:"barcode"`
	Kind       string `json:"kind"`
	BorrowerID string `json:"borrower_id"`
	Token      string `json:"token"`
}

// readScans feeds stdin scan lines into the gateway until EOF or shutdown.
func readScans(ctx context.Context, scanGateway *gateway.Gateway, logger *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var scan scanLine
		if err := unmarshal.Unmarshal(line, &scan); err != nil {
			logger.Error("unreadable scan line", shell.LogAttrError, err.Error())
			continue
		}

		result, err := scanGateway.Handle(ctx, gateway.ScanEvent{
			Barcode:          scan.Barcode,
			Kind:             gateway.ScanKind(scan.Kind),
			BorrowerID:       scan.BorrowerID,
			OccurredAt:       time.Now(),
			IdempotencyToken: scan.Token,
		})
		if err != nil {
			logger.Error("scan rejected",
				shell.LogAttrBarcode, scan.Barcode,
				"scan_kind", scan.Kind,
				shell.LogAttrError, err.Error(),
			)

			continue
		}

		logger.Info("scan processed",
			shell.LogAttrBarcode, result.Barcode,
			"scan_kind", scan.Kind,
			"state", result.State,
			"duplicate", result.Duplicate,
			"idempotent", result.Idempotent,
		)
	}

	if err := scanner.Err(); err != nil {
		logger.Error("reading scans failed", shell.LogAttrError, err.Error())
	}
}

func buildLogger(logCfg config.LogConfig) (*slog.Logger, slog.Handler) {
	level := slog.LevelInfo

	switch logCfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if logCfg.Format == "console" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), handler
}
