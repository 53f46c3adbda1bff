package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/points-bet-platform/internal/settlement-worker/consumer"
	"github.com/radieske/points-bet-platform/internal/settlement-worker/repository"
	"github.com/radieske/points-bet-platform/internal/shared/cache"
	"github.com/radieske/points-bet-platform/internal/shared/config"
	"github.com/radieske/points-bet-platform/internal/shared/db"
	"github.com/radieske/points-bet-platform/internal/shared/kafka"
	"github.com/radieske/points-bet-platform/internal/shared/logger"
	"github.com/radieske/points-bet-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, logger.WithLevel(cfg.LogLevel))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres: settle_bets / refresh_leaderboard
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Kafka consumer: event_settled
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicEventSettled, "settlement-worker")
	defer reader.Close()

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Repo:        repository.NewPostgresRepo(pg),
		Odds:        cache.NewOddsCache(redisClient, 30*time.Second),
		Leaderboard: cache.NewLeaderboardCache(redisClient, 30*time.Second),
	}

	// DLQ opcional
	if cfg.TopicEventSettledDLQ != "" {
		dlq := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicEventSettledDLQ)
		defer dlq.Close()
		proc.DLQ = dlq
	}

	m := metrics.NewWorker(prometheus.DefaultRegisterer, "settlement_worker")
	proc.OnConsumed = func() { m.Consumed.Inc() }
	proc.OnProcessed = func() { m.Processed.Inc() }
	proc.OnError = func(stage string) { m.Errors.WithLabelValues(stage).Inc() }

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return errors.New("pg: " + err.Error())
		}
		return redisClient.Ping(ctx).Err()
	})
	defer metricsSrv.Close()
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicEventSettled),
		zap.String("dlq", cfg.TopicEventSettledDLQ),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("settlement-worker stopped")
}
