package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"vod-pipeline/internal/delivery/http/routers"
	"vod-pipeline/internal/infrastructure/db"
	infra_queue "vod-pipeline/internal/infrastructure/queue"
	infra_repo "vod-pipeline/internal/infrastructure/repositories"
	"vod-pipeline/internal/pkg/config"
	"vod-pipeline/internal/usecases"
	"vod-pipeline/pkg/constants"
	"vod-pipeline/pkg/logger"

	_ "vod-pipeline/migrations"
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

	if os.Getenv("RUN_AUTO_MIGRATION") == "true" {
		sqlDB, err := database.DB()
		if err != nil {
			log.Fatalf("could not acquire sql.DB: %v", err)
		}
		goose.SetBaseFS(nil)
		if err := goose.Up(sqlDB, "."); err != nil {
			log.Fatalf("failed to apply migrations: %v", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})

	titleRepo := infra_repo.NewTitleRepository(database)
	dispatcher := infra_queue.NewDispatcher(rdb, log)
	contentService := usecases.NewContentService(titleRepo, dispatcher, log)

	app := fiber.New()
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	routers.SetupTitleRoutes(app, contentService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": constants.StatusOK})
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	go func() {
		log.Infof("server starting on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received, stopping server")

	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctxShut); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}
	log.Info("server stopped")
}
