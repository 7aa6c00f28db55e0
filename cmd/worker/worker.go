package main

import (
	"context"
	"log"

	"render-service/internal/browser"
	"render-service/internal/config"
	"render-service/internal/logger"
	"render-service/internal/queue"
	"render-service/internal/telemetry"
	"render-service/services"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	// Connect to Redis for job results
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	redisOpt, err := cfg.AsynqRedisOpt()
	if err != nil {
		log.Fatal("Invalid Redis configuration:", err)
	}

	renders := services.NewRenderService(cfg, browser.New(), metrics, logger.Get())
	processor := queue.NewTaskProcessor(renders, rdb)

	// Each task launches its own Chrome, so concurrency stays modest.
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				"renders": 9,
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("render task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskRenderCapture, processor.HandleRenderCapture)

	logger.Info("starting render worker", "concurrency", cfg.WorkerConcurrency, "redis", cfg.RedisURL)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
