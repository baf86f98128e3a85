package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/riteshkumar/scheduled-transfers/internal/config"
	"github.com/riteshkumar/scheduled-transfers/internal/events"
	"github.com/riteshkumar/scheduled-transfers/internal/handler"
	"github.com/riteshkumar/scheduled-transfers/internal/repository"
	"github.com/riteshkumar/scheduled-transfers/internal/service"
)

// stores bundles the repositories for the configured driver with the
// function that releases their connections.
type stores struct {
	accounts  repository.AccountRepository
	transfers repository.TransferRepository
	close     func(context.Context) error
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	// Initialise logger
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err.Error())
		os.Exit(1)
	}
	logger.Info("server exited gracefully")
}

func run(cfg config.Config, logger *slog.Logger) error {
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := openStores(startupCtx, cfg)
	if err != nil {
		return err
	}
	defer st.close(context.Background())
	logger.Info("store ready", "driver", cfg.StoreDriver)

	publisher, closePublisher, err := openPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	if cfg.SeedData {
		data := service.DefaultSeedData()
		if cfg.SeedFile != "" {
			if data, err = service.LoadSeedData(cfg.SeedFile); err != nil {
				return err
			}
		}
		if err := service.NewSeeder(st.accounts, st.transfers, logger).Seed(startupCtx, data); err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
	}

	// Initialise services
	accountService := service.NewAccountService(st.accounts, logger)
	transferService := service.NewTransferService(st.transfers, service.NewFeeCalculator(), publisher, logger)

	// Initialise handlers
	accountHandler := handler.NewAccountHandler(accountService, logger)
	transferHandler := handler.NewTransferHandler(transferService, logger)

	router := handler.NewRouter(transferHandler, accountHandler, logger)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server on port " + cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-quit:
	}
	logger.Info("shutting down server...")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := repository.NewPostgresDB(ctx, repository.PostgresConfig{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Name:     cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			return nil, err
		}
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			accounts:  repository.NewAccountRepository(db),
			transfers: repository.NewTransferRepository(db),
			close:     func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMongo:
		store, err := repository.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &stores{
			accounts:  repository.NewMongoAccountRepository(store),
			transfers: repository.NewMongoTransferRepository(store),
			close:     store.Close,
		}, nil

	default:
		return &stores{
			accounts:  repository.NewMemoryAccountRepository(),
			transfers: repository.NewMemoryTransferRepository(),
			close:     func(context.Context) error { return nil },
		}, nil
	}
}

func openPublisher(cfg config.Config, logger *slog.Logger) (events.Publisher, func(), error) {
	if cfg.AMQPURL == "" {
		return events.NoopPublisher{}, func() {}, nil
	}

	publisher, err := events.NewRabbitMQPublisher(cfg.AMQPURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("publishing transfer events", "queue", events.TransferEventQueue)
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close event publisher", "error", err.Error())
		}
	}, nil
}
