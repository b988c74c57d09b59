package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/facility-triage/internal/api/http"
	"github.com/spec-kit/facility-triage/internal/api/http/handlers"
	"github.com/spec-kit/facility-triage/internal/config"
	"github.com/spec-kit/facility-triage/internal/events"
	"github.com/spec-kit/facility-triage/internal/observability"
	"github.com/spec-kit/facility-triage/internal/persistence"
	"github.com/spec-kit/facility-triage/internal/repository"
	"github.com/spec-kit/facility-triage/internal/service"
	"github.com/spec-kit/facility-triage/internal/triage"
	"github.com/spec-kit/facility-triage/internal/worker"
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

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	perfRepo := repository.NewPerformanceRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
		SLA:         cfg.SLA,
	})

	rules := rulesFromConfig(cfg.Triage)
	triageService := service.NewTriageService(service.TriageDependencies{
		TicketRepo:      ticketRepo,
		StaffRepo:       staffRepo,
		PerformanceRepo: perfRepo,
		HistoryRepo:     historyRepo,
		Dispatcher:      dispatcher,
		Cache:           redis.Client,
		Logger:          logger,
		Metrics:         metrics,
		Rules:           rules,
		Config:          cfg.Triage,
	})

	poller := worker.NewPoller(worker.CycleRunnerFunc(func(ctx context.Context) error {
		_, err := triageService.RunCycle(ctx)
		return err
	}), cfg.Triage.PollInterval(), logger, metrics)
	go poller.Run(ctx)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets: handlers.NewTicketsHandler(ticketService),
		Staff:   handlers.NewStaffHandler(staffRepo),
		Triage:  handlers.NewTriageHandler(triageService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func rulesFromConfig(cfg config.TriageConfig) triage.RuleSet {
	rules := triage.DefaultRuleSet()
	rules.DefaultRule.LocationWeight = cfg.DefaultLocationWeight
	rules.DefaultRule.ExperienceWeight = cfg.DefaultExperienceWeight
	rules.DefaultRule.WorkloadWeight = cfg.DefaultWorkloadWeight
	return rules
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
