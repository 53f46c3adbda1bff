package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/points-bet-platform/internal/api-server/auth"
	httpapi "github.com/radieske/points-bet-platform/internal/api-server/http"
	"github.com/radieske/points-bet-platform/internal/api-server/repo"
	"github.com/radieske/points-bet-platform/internal/api-server/store"
	"github.com/radieske/points-bet-platform/internal/shared/cache"
	"github.com/radieske/points-bet-platform/internal/shared/config"
	"github.com/radieske/points-bet-platform/internal/shared/db"
	"github.com/radieske/points-bet-platform/internal/shared/kafka"
	"github.com/radieske/points-bet-platform/internal/shared/logger"
	"github.com/radieske/points-bet-platform/internal/shared/metrics"
	"github.com/radieske/points-bet-platform/internal/supabase"
)

const (
	oddsTTL        = 30 * time.Second
	leaderboardTTL = 30 * time.Second
	drainTimeout   = 10 * time.Second
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, logger.WithLevel(cfg.LogLevel))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// BaaS (GoTrue + PostgREST)
	sb, err := supabase.New(supabase.Config{
		URL:        cfg.SupabaseURL,
		ServiceKey: cfg.SupabaseServiceKey,
		Timeout:    cfg.SupabaseTimeout,
	})
	if err != nil {
		log.Fatal("supabase client", zap.Error(err))
	}

	// Postgres: transação de aposta
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis: cache de odds/ranking e denylist de tokens
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers (bet_placed, event_settled)
	betPub := kafka.NewPublisher(kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced))
	defer betPub.Close()
	settlePub := kafka.NewPublisher(kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicEventSettled))
	defer settlePub.Close()

	// tokens: HS256 local quando o segredo está configurado, senão GET /auth/v1/user
	var verifier auth.Verifier = auth.NewRemoteVerifier(sb.Auth)
	if cfg.SupabaseJWTSecret != "" {
		verifier = auth.NewJWTVerifier(cfg.SupabaseJWTSecret)
	}

	api := httpapi.NewServer(httpapi.Deps{
		Log:             log,
		Store:           store.New(sb),
		Auth:            sb.Auth,
		AuthAdmin:       sb.Auth.Admin,
		Verifier:        verifier,
		Bets:            repo.NewPostgres(pg),
		BetPublisher:    betPub,
		SettlePublisher: settlePub,
		Odds:            cache.NewOddsCache(rdb, oddsTTL),
		Leaderboard:     cache.NewLeaderboardCache(rdb, leaderboardTTL),
		Denylist:        cache.NewDenylist(rdb),
		Metrics:         metrics.NewHTTP(prometheus.DefaultRegisterer, cfg.ServiceName),
		InitialPoints:   cfg.InitialPoints,
		Production:      cfg.IsProduction(),
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitRPS:    cfg.RateLimitRPS,
		RateLimitBurst:  cfg.RateLimitBurst,
		RequestTimeout:  cfg.RequestTimeout,
		TrustProxy:      cfg.TrustProxy,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if rl := api.Limiter(); rl != nil {
		rl.StartCleanup(ctx, time.Minute)
	}

	// metrics/health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return errors.New("pg: " + err.Error())
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return errors.New("redis: " + err.Error())
		}
		return sb.Ping(ctx)
	})
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	// HTTP público
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("api-server listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("api shutdown", zap.Error(err))
	}
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("api-server stopped")
}
