package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"paygate/config"
	"paygate/internal/adapter/queue"
	pgStorage "paygate/internal/adapter/storage/postgres"
	"paygate/internal/service"
	"paygate/internal/worker"
	"paygate/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Int("concurrency", cfg.Worker.Concurrency).
		Bool("test_mode", cfg.Test.Mode).
		Msg("Starting payment gateway worker")

	ctx := context.Background()

	pool, err := pgStorage.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	redisOpt, err := asynq.ParseRedisURI(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse Redis URL")
	}
	jobQueue := queue.NewAsynqQueue(redisOpt)
	defer jobQueue.Close()

	merchantRepo := pgStorage.NewMerchantRepository(pool)
	paymentRepo := pgStorage.NewPaymentRepository(pool)
	refundRepo := pgStorage.NewRefundRepository(pool)
	webhookLogRepo := pgStorage.NewWebhookLogRepository(pool)

	webhookSvc := service.NewWebhookService(merchantRepo, webhookLogRepo, jobQueue, log)
	sigSvc := service.NewSignatureService()

	paymentWorker := worker.NewPaymentWorker(paymentRepo, webhookSvc, cfg.Test, log)
	refundWorker := worker.NewRefundWorker(refundRepo, paymentRepo, webhookSvc, cfg.Test, log)
	backoff := worker.WebhookBackoff(cfg.Test.WebhookRetryIntervals)
	webhookWorker := worker.NewWebhookWorker(webhookLogRepo, merchantRepo, jobQueue, sigSvc, nil, backoff, log)

	srv := worker.NewServer(redisOpt, cfg.Worker.Concurrency, log)
	mux := worker.NewMux(paymentWorker, refundWorker, webhookWorker)

	// Reconciliation sweep for rows whose enqueue was lost.
	sweepCtx, cancelSweep := context.WithCancel(ctx)
	sweeper := worker.NewSweeper(paymentRepo, refundRepo, webhookLogRepo, jobQueue, log)
	go sweeper.Run(sweepCtx)

	if err := srv.Start(mux); err != nil {
		log.Fatal().Err(err).Msg("Worker server failed to start")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down worker...")

	cancelSweep()
	srv.Shutdown()

	log.Info().Msg("Worker exited")
}
