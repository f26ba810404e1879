package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/helpdesk-kit/ticket-bot/internal/api/http"
	"github.com/helpdesk-kit/ticket-bot/internal/api/http/handlers"
	"github.com/helpdesk-kit/ticket-bot/internal/cache"
	"github.com/helpdesk-kit/ticket-bot/internal/config"
	"github.com/helpdesk-kit/ticket-bot/internal/events"
	"github.com/helpdesk-kit/ticket-bot/internal/observability"
	"github.com/helpdesk-kit/ticket-bot/internal/persistence"
	"github.com/helpdesk-kit/ticket-bot/internal/platform"
	"github.com/helpdesk-kit/ticket-bot/internal/repository"
	"github.com/helpdesk-kit/ticket-bot/internal/scheduler"
	"github.com/helpdesk-kit/ticket-bot/internal/service"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewTicketMessageRepository(pool)
	guildRepo := repository.NewGuildRepository(pool)
	escalationRepo := repository.NewEscalationRepository(pool)
	reminderRepo := repository.NewReminderRepository(pool)
	blacklistRepo := repository.NewBlacklistRepository(pool)

	leases := cache.NewLeaseStore(redis.Client)
	metrics := observability.NewMetrics()
	messenger := platform.NewLogMessenger(logger)
	dispatcher := events.NewInMemoryDispatcher()

	audit := service.NewAuditService(dispatcher, logger)
	audit.RegisterHandlers()

	notifier := scheduler.NewPriorityScheduler(leases, ticketRepo, guildRepo, messenger, logger, metrics, cfg.Scheduler)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		MessageRepo:    messageRepo,
		GuildRepo:      guildRepo,
		EscalationRepo: escalationRepo,
		BlacklistRepo:  blacklistRepo,
		Notifier:       notifier,
		Messenger:      messenger,
		Transcripts:    platform.NoopTranscripts{},
		Dispatcher:     dispatcher,
		Logger:         logger,
		Scheduler:      cfg.Scheduler,
	})

	// Relaunch ping tasks for leases that survived the last shutdown.
	if open, err := ticketRepo.ListOpen(ctx); err != nil {
		logger.Warn("could not list open tickets for resume", zap.Error(err))
	} else {
		notifier.Resume(ctx, open)
	}

	escalationSweep := scheduler.NewEscalationSweep(escalationRepo, ticketRepo, guildRepo, messenger, logger, cfg.Scheduler)
	autoCloseSweep := scheduler.NewAutoCloseSweep(ticketRepo, ticketService, logger)
	reminderSweep := scheduler.NewReminderSweep(reminderRepo, messenger, logger)

	go scheduler.RunEvery(ctx, "escalation", cfg.Scheduler.EscalationInterval, escalationSweep.Run, logger, metrics)
	go scheduler.RunEvery(ctx, "autoclose", cfg.Scheduler.AutoCloseInterval, autoCloseSweep.Run, logger, metrics)
	go scheduler.RunEvery(ctx, "reminder", cfg.Scheduler.ReminderInterval, reminderSweep.Run, logger, metrics)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	guildService := service.NewGuildService(guildRepo)
	sessionService := service.NewSessionService(leases, cfg.Scheduler.EditSessionTTL)
	reminderService := service.NewReminderService(reminderRepo, dispatcher)

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	opsHandler := handlers.NewOpsHandler(ticketService, metrics)
	adminHandler := handlers.NewAdminHandler(guildService, sessionService, reminderService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: healthHandler,
		Ops:    opsHandler,
		Admin:  adminHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	notifier.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
