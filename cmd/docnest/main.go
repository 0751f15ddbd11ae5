package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/docnest/internal/adapter/driven/cipher"
	"github.com/ericfisherdev/docnest/internal/adapter/driven/hasher"
	sqliteadapter "github.com/ericfisherdev/docnest/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/docnest/internal/adapter/driving/http"
	"github.com/ericfisherdev/docnest/internal/application"
	"github.com/ericfisherdev/docnest/internal/config"
	"github.com/ericfisherdev/docnest/internal/logging"
	"github.com/ericfisherdev/docnest/internal/metrics"
)

// sessionPurgeInterval is how often expired sessions are deleted.
const sessionPurgeInterval = 15 * time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on a missing or malformed secret key).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Build the redacting logger and make it the default.
	logger, logCloser, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()
	slog.SetDefault(logger)
	slog.Info("config loaded", "config", cfg)

	// 3. Build the process-wide cipher before anything can touch a credential.
	aead, err := cipher.New(cfg.SecretKey)
	if err != nil {
		return err
	}
	argon, err := hasher.New(hasher.DefaultParams())
	if err != nil {
		return err
	}

	// 4. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 6. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	if version, _, err := sqliteadapter.SchemaVersion(db.Writer); err == nil {
		slog.Info("migrations complete", "schema_version", version)
	}

	// 7. Wire adapters and services.
	reg := metrics.New()

	auditSvc := application.NewAuditService(sqliteadapter.NewAuditRepo(db), logger)
	credentialSvc := application.NewCredentialService(
		sqliteadapter.NewCredentialRepo(db),
		application.NewCredentialCodec(aead),
		auditSvc,
		reg,
		logger,
	)
	documentSvc := application.NewDocumentService(sqliteadapter.NewDocumentRepo(db))
	accountSvc := application.NewAccountService(
		sqliteadapter.NewAccountRepo(db),
		sqliteadapter.NewSessionRepo(db),
		argon,
		cfg.SessionTTL,
		logger,
	)
	go accountSvc.StartSessionJanitor(ctx, sessionPurgeInterval)

	// 8. Create HTTP handler with middleware applied.
	h := httphandler.NewHandler(credentialSvc, documentSvc, accountSvc, auditSvc, db.Reader, logger)
	handler := httphandler.NewServeMux(h, logger, reg, reg.Handler())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
