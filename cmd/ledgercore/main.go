package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vextrus/ledger-core/internal/core/domain"
	"github.com/vextrus/ledger-core/internal/core/services"
	"github.com/vextrus/ledger-core/internal/platform/config"
	"github.com/vextrus/ledger-core/internal/platform/logging"
	"github.com/vextrus/ledger-core/internal/repositories/cache"
	"github.com/vextrus/ledger-core/internal/repositories/database/pgsql"
	"github.com/vextrus/ledger-core/internal/repositories/eventstream"
	"github.com/vextrus/ledger-core/pkg/database"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg); err != nil {
		os.Exit(1)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to initialize redis client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.CloseRedisClient(redisClient)

	// Wire the write-side stack: stores, repositories, services.
	eventStore := pgsql.NewPgxEventStore(dbPool)
	snapshotStore := pgsql.NewPgxSnapshotStore(dbPool)
	publisher := cache.NewRedisEventPublisher(redisClient)
	invalidator := cache.NewRedisCacheInvalidator(redisClient)

	invoiceRepo := eventstream.NewInvoiceRepository(eventStore, snapshotStore, publisher, invalidator).
		WithSnapshotInterval(cfg.SnapshotInterval)

	coordinator := services.NewPaymentCoordinator(invoiceRepo)
	subscriber := cache.NewSubscriber(redisClient)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Payment event consumer starting",
			slog.String("channel", cache.EventChannel(domain.AggregateTypePayment)))
		return subscriber.Run(gctx, domain.AggregateTypePayment, coordinator.HandlePaymentCompleted)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Shutdown complete.")
}

func runMigrations(logger *slog.Logger, cfg *config.Config) error {
	logger.Info("Running database migrations...")
	// Open a separate standard sql.DB connection for migrations, using the
	// pgx stdlib driver to stay compatible with the main pool.
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.MigrationsDir, "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error", slog.String("error", sourceErr.Error()))
		return sourceErr
	}
	if dbErr != nil {
		logger.Error("Migration database error", slog.String("error", dbErr.Error()))
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
