package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/request-desk/internal/api/http"
	"github.com/spec-kit/request-desk/internal/api/http/handlers"
	"github.com/spec-kit/request-desk/internal/auth"
	"github.com/spec-kit/request-desk/internal/config"
	"github.com/spec-kit/request-desk/internal/events"
	"github.com/spec-kit/request-desk/internal/observability"
	"github.com/spec-kit/request-desk/internal/persistence"
	"github.com/spec-kit/request-desk/internal/service"
	"github.com/spec-kit/request-desk/internal/store"
	"github.com/spec-kit/request-desk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticketStore, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init store", zap.Error(err))
	}
	defer cleanup()

	dispatcher := events.NewInMemoryDispatcher()
	ticketService := service.NewTicketService(service.Dependencies{
		Store:      ticketStore,
		Dispatcher: dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	accounts := auth.NewAccountRegistry(cfg.Auth.BcryptCost)
	if err := accounts.SeedDefaults(); err != nil {
		logger.Fatal("failed to seed demo accounts", zap.Error(err))
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(ticketStore),
		Auth:           handlers.NewAuthHandler(accounts, tokens),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.TicketStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		pgStore, err := store.NewPostgresStore(ctx, pg.Pool)
		if err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pgStore, pg.Close, nil
	case config.DriverRedis:
		rd, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		redisStore, err := store.NewRedisStore(ctx, rd.Client, cfg.Store.RedisKey)
		if err != nil {
			rd.Close()
			return nil, nil, err
		}
		return redisStore, rd.Close, nil
	default:
		fileStore, err := store.NewFileStore(cfg.Store.FilePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return fileStore, func() {}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
