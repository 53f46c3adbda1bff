package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/points-bet-platform/internal/odds-worker/consumer"
	"github.com/radieske/points-bet-platform/internal/odds-worker/repository"
	"github.com/radieske/points-bet-platform/internal/shared/cache"
	"github.com/radieske/points-bet-platform/internal/shared/config"
	"github.com/radieske/points-bet-platform/internal/shared/db"
	"github.com/radieske/points-bet-platform/internal/shared/kafka"
	"github.com/radieske/points-bet-platform/internal/shared/logger"
	"github.com/radieske/points-bet-platform/internal/shared/metrics"
)

const oddsTTL = 30 * time.Second

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, logger.WithLevel(cfg.LogLevel))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// consumer group odds-worker em bet_placed
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetPlaced, "odds-worker")
	defer reader.Close()

	m := metrics.NewWorker(prometheus.DefaultRegisterer, "odds_worker")

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Repo:        repository.NewPostgresRepo(pg),
		Cache:       cache.NewOddsCache(redisClient, oddsTTL),
		OnConsumed:  func() { m.Consumed.Inc() },
		OnProcessed: func() { m.Processed.Inc() },
		OnError:     func(stage string) { m.Errors.WithLabelValues(stage).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return errors.New("pg: " + err.Error())
		}
		return redisClient.Ping(ctx).Err()
	})
	defer metricsSrv.Close()
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("odds-worker started", zap.String("consume", cfg.TopicBetPlaced))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("odds-worker stopped")
}
