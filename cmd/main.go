package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sentience-labs/x402-gateway/internal/api"
	"github.com/sentience-labs/x402-gateway/internal/config"
	"github.com/sentience-labs/x402-gateway/internal/events"
	"github.com/sentience-labs/x402-gateway/internal/facilitator"
	"github.com/sentience-labs/x402-gateway/internal/interfaces"
	"github.com/sentience-labs/x402-gateway/internal/repository"
	"github.com/sentience-labs/x402-gateway/internal/reputation"
	"github.com/sentience-labs/x402-gateway/internal/service"
	"github.com/sentience-labs/x402-gateway/internal/telemetry"
)

func main() {
	cfg := config.Load()

	if err := telemetry.Init(cfg.ServiceName); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting x402 gateway",
		zap.String("network", cfg.Network),
		zap.String("facilitator", cfg.FacilitatorURL),
		zap.String("payee", cfg.PaymentRecipient),
	)

	// Receipt persistence (optional)
	var receipts interfaces.ReceiptRepository
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		repo := repository.NewReceiptRepository(db)
		if err := repo.InitDB(); err != nil {
			telemetry.Logger.Fatal("Failed to initialize database", zap.Error(err))
		}
		receipts = repo
	} else {
		telemetry.Logger.Warn("DATABASE_URL not set, receipts will not be persisted")
	}

	// Settlement idempotency cache (optional)
	var cache interfaces.ReceiptCache
	if cfg.RedisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		defer redisClient.Close()
		cache = repository.NewRedisReceiptCache(redisClient)
	} else {
		telemetry.Logger.Warn("REDIS_URL not set, proof resubmission will not be idempotent")
	}

	// Settlement events (optional)
	var publisher interfaces.EventPublisher
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	payments := &service.PaymentService{
		Facilitator: facilitator.NewClient(cfg.FacilitatorURL, cfg.FacilitatorTimeout),
		Receipts:    receipts,
		Cache:       cache,
		Events:      publisher,
	}

	router := api.NewRouter(api.Deps{
		Cfg:        cfg,
		Payments:   payments,
		Reputation: reputation.SimulatedProvider{},
		Shards:     reputation.SimulatedLedger{},
		Receipts:   receipts,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		telemetry.Logger.Info("x402 gateway listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
}
