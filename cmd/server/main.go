package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	_ "modernc.org/sqlite"

	"veridoc/internal/document/store"
	"veridoc/internal/fraud"
	"veridoc/internal/institute"
	"veridoc/internal/issuance"
	"veridoc/internal/ledger"
	"veridoc/internal/legacy"
	"veridoc/internal/platform/config"
	"veridoc/internal/platform/httpserver"
	"veridoc/internal/platform/logger"
	"veridoc/internal/platform/redis"
	transport "veridoc/internal/transport/http"
	"veridoc/internal/verification"
	verifmetrics "veridoc/internal/verification/metrics"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Auxiliary state (accounts, legacy records, fraud logs) always lives in
	// sqlite; the document store can move to postgres independently. When
	// postgres is selected, DBDSN belongs to it and sqlite falls back to its
	// default path.
	auxPath := cfg.DBDSN
	if cfg.DBDriver != "sqlite" {
		auxPath = "veridoc.db"
	}
	auxDB, err := sql.Open("sqlite", auxPath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	auxDB.SetMaxOpenConns(1)
	defer func() { _ = auxDB.Close() }()

	docs, err := openDocumentStore(cfg, auxDB)
	if err != nil {
		return err
	}

	instituteStore, err := institute.NewSQLiteStore(auxDB)
	if err != nil {
		return fmt.Errorf("init institute store: %w", err)
	}
	legacyStore, err := legacy.NewSQLiteStore(auxDB)
	if err != nil {
		return fmt.Errorf("init legacy store: %w", err)
	}
	fraudLogs, err := fraud.NewSQLiteLogStore(auxDB)
	if err != nil {
		return fmt.Errorf("init fraud log store: %w", err)
	}

	publisher, err := ledger.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return fmt.Errorf("init kafka publisher: %w", err)
	}
	defer publisher.Close()

	var sink ledger.Sink
	if publisher != nil {
		sink = publisher
		log.Info("ledger events mirrored to kafka", "topic", cfg.KafkaTopic)
	}
	led, err := ledger.NewFileStore(cfg.LedgerPath, log, sink)
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}

	cache, err := redis.New(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}
	if cache != nil {
		defer func() { _ = cache.Close() }()
		log.Info("verification cache enabled")
	}

	institutes := institute.NewService(instituteStore, cfg.JWTSigningKey, cfg.TokenTTL)
	issuanceSvc := issuance.NewService(docs, led, instituteStore, log)
	verifier := verification.NewEngine(docs, led, instituteStore, cache,
		verifmetrics.New(prometheus.DefaultRegisterer), log)
	fraudSvc := fraud.NewService(nil, fraudLogs,
		fraud.NewMetrics(prometheus.DefaultRegisterer), log)
	legacySvc := legacy.NewService(legacyStore, led, log)

	handlers := transport.NewHandlers(cfg, log, institutes, issuanceSvc, verifier, fraudSvc, legacySvc, led)
	srv := httpserver.New(cfg.Addr, handlers.Router())

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openDocumentStore(cfg config.Server, auxDB *sql.DB) (store.DocumentStore, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return store.NewPostgresStore(db)
	case "sqlite":
		return store.NewSQLiteStore(auxDB)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
	}
}
