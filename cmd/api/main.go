package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warehouse-receiving/internal/config"
	"warehouse-receiving/internal/database"
	"warehouse-receiving/internal/handler"
	"warehouse-receiving/internal/repository"
	"warehouse-receiving/internal/router"
	"warehouse-receiving/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting warehouse-receiving API server")

	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           newHandler(cfg, pool, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Leaves room for the fulfillment timeout plus retries.
		WriteTimeout: cfg.Fulfillment.RequestTimeout()*time.Duration(cfg.Fulfillment.MaxRetries+1) + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().
			Str("address", server.Addr).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutdown signal received, draining in-flight fulfillments")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server gracefully")
		if closeErr := server.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close server")
		}
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info().Msg("server shutdown completed")
	return nil
}

// newHandler wires both fulfillment variants behind the router.
func newHandler(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) http.Handler {
	timeout := cfg.Fulfillment.RequestTimeout()
	lockTimeout := cfg.Fulfillment.LockTimeout()
	policy := service.DefaultRetryPolicy(cfg.Fulfillment.MaxRetries)

	transactional := service.NewFulfillmentService(
		repository.NewTransactor(pool, lockTimeout, logger),
		repository.NewProductRepository(logger),
		repository.NewWarehouseRepository(logger),
		repository.NewOrderRepository(pool, logger),
		repository.NewLineItemRepository(pool, logger),
		timeout,
		logger,
	)

	// Shares the pool; closing the sql.DB handle is not required.
	procedure := service.NewProcedureService(database.OpenSQL(pool), timeout, lockTimeout, logger)

	return router.New(
		handler.NewWarehouseHandler(service.NewRetryingFulfiller(transactional, policy, logger), "transaction", logger),
		handler.NewWarehouseHandler(service.NewRetryingFulfiller(procedure, policy, logger), "procedure", logger),
		handler.NewHealthHandler(pool, logger),
		cfg.RateLimit,
		logger,
	)
}
