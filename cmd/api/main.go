package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sla-analytics/internal/api/http"
	"github.com/spec-kit/sla-analytics/internal/api/http/handlers"
	"github.com/spec-kit/sla-analytics/internal/config"
	"github.com/spec-kit/sla-analytics/internal/events"
	"github.com/spec-kit/sla-analytics/internal/observability"
	"github.com/spec-kit/sla-analytics/internal/persistence"
	"github.com/spec-kit/sla-analytics/internal/service"
	"github.com/spec-kit/sla-analytics/internal/store"
	"github.com/spec-kit/sla-analytics/internal/worker"
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

	snapshots := store.NewHolder()
	snapshotRepo := store.NewSnapshotRepository(pg.PoolHandle())
	if snapshot, err := snapshotRepo.LoadLatest(ctx); err != nil {
		logger.Warn("failed to load persisted snapshot", zap.Error(err))
	} else if snapshot != nil {
		snapshots.Restore(snapshot)
		logger.Info("restored persisted snapshot",
			zap.Int("tickets", len(snapshot.Tickets)),
			zap.Int("thresholds", len(snapshot.Thresholds)),
		)
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartUploadAuditor(dispatcher, redis, logger, cfg.Upload.AuditTrailLen)

	uploadService := service.NewUploadService(service.UploadDependencies{
		Snapshots:  snapshots,
		Repo:       snapshotRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	reportService := service.NewReportService(snapshots)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.Upload.MaxBytes,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	uploadHandler := handlers.NewUploadHandler(uploadService)
	reportsHandler := handlers.NewReportsHandler(reportService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  healthHandler,
		Upload:  uploadHandler,
		Reports: reportsHandler,
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
