// Package app assembles the service: configuration, database, services,
// HTTP surface and graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sonorousduck/foodtracker-backend/internal/config"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/repository/postgres"
	httphandler "github.com/sonorousduck/foodtracker-backend/internal/handler/http"
	"github.com/sonorousduck/foodtracker-backend/internal/service"
	"github.com/sonorousduck/foodtracker-backend/migrations"
)

type App struct {
	cfg    *config.Config
	logger *zap.Logger

	pool       *pgxpool.Pool
	revocation *service.RevocationService
	audit      *service.AuditService
	server     *http.Server
}

// New builds the full dependency graph. The returned App owns the
// database pool and background workers until Run returns.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg.Database.AutoMigrate {
		if err := migrations.Run(cfg.Database.DSN()); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("database schema up to date")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	users := postgres.NewUserRepositoryPostgres(pool)
	revokedTokens := postgres.NewRevokedTokenRepositoryPostgres(pool)
	authLogs := postgres.NewAuthLogRepositoryPostgres(pool)

	tokens := service.NewTokenService(cfg.Auth)
	passwords := service.NewPasswordService()
	csrf := service.NewCSRFService(cfg.CSRF.Secret)
	revocation := service.NewRevocationService(revokedTokens, logger, cfg.Revocation)
	audit := service.NewAuditService(authLogs, logger)
	auth := service.NewAuthService(users, tokens, passwords, csrf, revocation, audit, logger)

	authHandler := httphandler.NewAuthHandler(auth, audit, tokens, logger)
	health := httphandler.NewHealthHandler(pool)

	router := httphandler.NewRouter(httphandler.RouterDeps{
		Config:      cfg,
		Logger:      logger,
		AuthHandler: authHandler,
		Health:      health,
		Tokens:      tokens,
		CSRF:        csrf,
		Revocation:  revocation,
		Users:       users,
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		revocation: revocation,
		audit:      audit,
		server:     server,
	}, nil
}

// Run starts the revocation maintenance loop and the HTTP server, then
// blocks until SIGINT/SIGTERM or a server error, draining in-flight
// work before returning.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.revocation.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.shutdown()
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http server shutdown", zap.Error(err))
	}

	a.shutdown()
	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) shutdown() {
	a.revocation.Stop()
	// Flush queued audit writes before closing the pool they write to.
	a.audit.Wait()
	a.pool.Close()
}

// Hostname is logged at startup to disambiguate replicas.
func Hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
