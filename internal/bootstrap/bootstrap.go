package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/config"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/ports"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/usecase"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/infrastructure/catalog"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/infrastructure/detection/rekognition"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/infrastructure/queue/nats"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/infrastructure/repository/postgres"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/infrastructure/resilience"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/infrastructure/storage/cached"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/infrastructure/storage/s3store"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/observability/logging"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Log     *slog.Logger
	Metrics *metrics.WorkerMetrics

	Queue    *nats.Queue
	Jobs     ports.JobStore
	Pipeline ports.ModerationPipeline
	Intake   ports.IntakeSweeper

	closeFn func()
}

func New(ctx context.Context, service string, cfg config.Config) (*App, error) {
	log := logging.NewJSONLogger(service, cfg.LogLevel)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	jobs := postgres.NewJobRepository(db)
	if err := jobs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	s3Client := s3store.Connect(s3store.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	store, err := s3store.New(s3Client)
	if err != nil {
		return nil, fmt.Errorf("init object store: %w", err)
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	cachedStore := cached.New(store, rdb, time.Duration(cfg.ResultCacheTTL)*time.Second, log)

	rekClient := rekognition.Connect(rekognition.Config{
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	detector := rekognition.New(rekClient, cfg.DetectionTopicARN, cfg.DetectionRoleARN, cfg.DetectionRPS)

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: executor})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	items := catalog.New(cfg.CatalogURL)

	classifier := usecase.NewClassifier(jobs, detector, cfg.ImageExtensions, cfg.VideoExtensions)
	resolver := usecase.NewResolver(detector, int32(cfg.DetectionPageSize))
	evaluator := usecase.NewEvaluator(cfg.CategoryRules)
	disposer := usecase.NewDisposer(items, cachedStore, jobs, log)
	escalation := usecase.NewEscalation(items, log)
	pipeline := usecase.NewPipeline(classifier, resolver, evaluator, disposer, escalation, jobs, cachedStore, queue, cfg.ResultsBucket, log)
	intake := usecase.NewIntake(items, cachedStore, queue, classifier, cfg.ModerationBucket, log)

	return &App{
		Config:  cfg,
		Log:     log,
		Metrics: metrics.NewWorkerMetrics(service),

		Queue:    queue,
		Jobs:     jobs,
		Pipeline: pipeline,
		Intake:   intake,

		closeFn: func() {
			queue.Close()
			_ = rdb.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
