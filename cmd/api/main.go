package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/prioritization-service/internal/api/http"
	"github.com/spec-kit/prioritization-service/internal/api/http/handlers"
	"github.com/spec-kit/prioritization-service/internal/cache"
	"github.com/spec-kit/prioritization-service/internal/config"
	"github.com/spec-kit/prioritization-service/internal/events"
	"github.com/spec-kit/prioritization-service/internal/observability"
	"github.com/spec-kit/prioritization-service/internal/persistence"
	"github.com/spec-kit/prioritization-service/internal/priority"
	"github.com/spec-kit/prioritization-service/internal/repository"
	"github.com/spec-kit/prioritization-service/internal/service"
	"github.com/spec-kit/prioritization-service/internal/signals"
	"github.com/spec-kit/prioritization-service/internal/worker"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var ticketRepo repository.TicketRepository
	var historyRepo repository.PriorityHistoryRepository
	if pool != nil {
		ticketRepo = repository.NewTicketRepository(pool)
		historyRepo = repository.NewPriorityHistoryRepository(pool)
	} else {
		ticketRepo = repository.NewMemoryTicketRepository()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	queueCache := cache.NewQueueCache(redis.Client, cfg.Redis.QueueTTL(), logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		HistoryRepo: historyRepo,
		Analyzer:    signals.NewKeywordAnalyzer(),
		Engine:      priority.NewEngine(cfg.Priority),
		QueueCache:  queueCache,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	if pool == nil {
		if seeded, err := ticketService.Reset(ctx); err != nil {
			logger.Warn("failed to seed sample tickets", zap.Error(err))
		} else {
			logger.Info("seeded sample tickets", zap.Int("count", seeded))
		}
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Analytics: handlers.NewAnalyticsHandler(ticketService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
