package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"vod-pipeline/internal/infrastructure/db"
	infra_queue "vod-pipeline/internal/infrastructure/queue"
	infra_repo "vod-pipeline/internal/infrastructure/repositories"
	"vod-pipeline/internal/infrastructure/storage"
	"vod-pipeline/internal/infrastructure/transcoder"
	"vod-pipeline/internal/pkg/config"
	"vod-pipeline/internal/usecases"
	"vod-pipeline/pkg/logger"
)

func main() {
	log := logger.New()

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}
	cfg := config.LoadConfig()

	database, err := db.NewPostgresDB(cfg.Database)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})

	publisher, err := storage.NewS3Publisher(cfg.Storage, log)
	if err != nil {
		log.Fatalf("storage client failed: %v", err)
	}

	prober := transcoder.NewFFprober(log)
	encoder := transcoder.NewFFmpegEncoder(cfg.Transcode.SegmentSecs, log)
	videoTranscoder := transcoder.NewTranscoder(prober, encoder, cfg.Transcode.TempDir, log)

	contentRepo := infra_repo.NewContentRepository(database)
	pipeline := usecases.NewPipelineService(
		contentRepo,
		videoTranscoder,
		publisher,
		cfg.Storage.Bucket,
		cfg.Storage.PublicURL,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := infra_queue.NewConsumer(rdb, pipeline, log)
	consumer.Start(ctx, cfg.Transcode.WorkerCount)
	log.Infof("pipeline worker started with %d workers", cfg.Transcode.WorkerCount)

	var sweeper *cron.Cron
	if cfg.Transcode.SweepEnabled {
		cleanup := usecases.NewCleanupService(cfg.Transcode.TempDir, log)
		sweeper = cron.New()
		if _, err := sweeper.AddFunc("@hourly", func() {
			if err := cleanup.SweepOldWorkDirs(cfg.Transcode.SweepMaxAge); err != nil {
				log.Errorf("work dir sweep failed: %v", err)
			}
		}); err != nil {
			log.Fatalf("could not schedule sweeper: %v", err)
		}
		sweeper.Start()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received, stopping workers")

	cancel()
	if sweeper != nil {
		sweeper.Stop()
	}
	consumer.Wait()
	log.Info("worker stopped")
}
