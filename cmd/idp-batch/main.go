package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-idp-batch/internal/repository"
	"github.com/noah-isme/sma-idp-batch/internal/service"
	"github.com/noah-isme/sma-idp-batch/pkg/cache"
	"github.com/noah-isme/sma-idp-batch/pkg/config"
	"github.com/noah-isme/sma-idp-batch/pkg/database"
	appErrors "github.com/noah-isme/sma-idp-batch/pkg/errors"
	"github.com/noah-isme/sma-idp-batch/pkg/export"
	"github.com/noah-isme/sma-idp-batch/pkg/logger"
	"github.com/noah-isme/sma-idp-batch/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("idp batch failed",
			zap.String("code", appErrors.FromError(err).Code),
			zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	location, err := cfg.Run.Location()
	if err != nil {
		return err
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Run.LockEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
	}
	locks := repository.NewRunLockRepository(redisClient, logr)
	defer locks.Close() //nolint:errcheck

	metrics := service.NewMetricsService()

	idpSvc := service.NewIdpService(
		repository.NewEnrollmentRepository(db),
		repository.NewActivityRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewIdpResultRepository(db),
		metrics,
		nil,
		location,
		logr,
	)

	var reports service.ReportWriter
	if cfg.Report.Enabled {
		store, err := storage.NewReportStore(cfg.Report.Dir)
		if err != nil {
			return err
		}
		renderer, err := export.NewRenderer(cfg.Report.Format)
		if err != nil {
			return err
		}
		reports = service.NewReportService(store, renderer, cfg.Report.Retention, logr)
	}

	runner := service.NewRunService(
		repository.NewWeightsRepository(db),
		idpSvc,
		locks,
		reports,
		metrics,
		service.RunOptions{
			SubjectIDs:     cfg.Run.SubjectIDs,
			LockTTL:        cfg.Run.LockTTL,
			PushgatewayURL: cfg.Metrics.PushgatewayURL,
			JobName:        cfg.Metrics.JobName,
		},
		logr,
	)

	_, err = runner.Run(ctx)
	return err
}
