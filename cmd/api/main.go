package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"paygate/config"
	gatewayHTTP "paygate/internal/adapter/http"
	"paygate/internal/adapter/queue"
	pgStorage "paygate/internal/adapter/storage/postgres"
	redisStorage "paygate/internal/adapter/storage/redis"
	"paygate/internal/core/ports"
	"paygate/internal/service"
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
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Bool("test_mode", cfg.Test.Mode).
		Msg("Starting payment gateway API")

	ctx := context.Background()

	pool, err := pgStorage.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	redisOpt, err := asynq.ParseRedisURI(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse Redis URL for queue")
	}
	jobQueue := queue.NewAsynqQueue(redisOpt)
	defer jobQueue.Close()

	// Repositories
	merchantRepo := pgStorage.NewMerchantRepository(pool)
	orderRepo := pgStorage.NewOrderRepository(pool)
	paymentRepo := pgStorage.NewPaymentRepository(pool)
	refundRepo := pgStorage.NewRefundRepository(pool)
	webhookLogRepo := pgStorage.NewWebhookLogRepository(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepository()
	transactor := pgStorage.NewTransactor(pool)

	// Services
	hashSvc := service.NewHashService()
	webhookSvc := service.NewWebhookService(merchantRepo, webhookLogRepo, jobQueue, log)
	orderSvc := service.NewOrderService(transactor, orderRepo, log)
	paymentSvc := service.NewPaymentService(transactor, orderRepo, paymentRepo, idempotencyRepo, jobQueue, log)
	refundSvc := service.NewRefundService(transactor, paymentRepo, refundRepo, jobQueue, log)
	merchantSvc := service.NewMerchantService(merchantRepo, webhookSvc, log)

	router := gatewayHTTP.SetupRouter(gatewayHTTP.RouterDeps{
		OrderSvc:     orderSvc,
		PaymentSvc:   paymentSvc,
		RefundSvc:    refundSvc,
		MerchantSvc:  merchantSvc,
		WebhookSvc:   webhookSvc,
		MerchantRepo: merchantRepo,
		HashSvc:      hashSvc,
		Queue:        jobQueue,
		HealthCheckers: []ports.HealthChecker{
			pgStorage.NewHealthChecker(pool),
			redisStorage.NewHealthChecker(rdb),
		},
		Logger: log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
