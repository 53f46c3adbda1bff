package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/points-bet-platform/pkg/contracts/events"
)

// JSONCache guarda valores serializados em JSON com TTL
type JSONCache struct {
	R redis.Cmdable
}

func NewJSONCache(r redis.Cmdable) *JSONCache { return &JSONCache{R: r} }

// Get retorna false (sem erro) quando a chave não existe
func (c *JSONCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, key, b, ttl).Err()
}

func (c *JSONCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.R.Del(ctx, keys...).Err()
}

// DelPrefix remove as chaves com o prefixo via SCAN (sem KEYS em produção)
func (c *JSONCache) DelPrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := c.R.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if err := c.Del(ctx, keys...); err != nil {
			return err
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// OddsCache: odds correntes por evento
type OddsCache struct {
	C   *JSONCache
	TTL time.Duration
}

func NewOddsCache(r redis.Cmdable, ttl time.Duration) *OddsCache {
	return &OddsCache{C: NewJSONCache(r), TTL: ttl}
}

func (o *OddsCache) Get(ctx context.Context, eventID string) (*events.OddsSnapshot, bool, error) {
	var s events.OddsSnapshot
	ok, err := o.C.Get(ctx, OddsKey(eventID), &s)
	if err != nil || !ok {
		return nil, false, err
	}
	return &s, true, nil
}

func (o *OddsCache) Set(ctx context.Context, s events.OddsSnapshot) error {
	return o.C.Set(ctx, OddsKey(s.EventID), s, o.TTL)
}

func (o *OddsCache) Invalidate(ctx context.Context, eventID string) error {
	return o.C.Del(ctx, OddsKey(eventID))
}

// LeaderboardCache guarda o top-N já serializado
type LeaderboardCache struct {
	C   *JSONCache
	TTL time.Duration
}

func NewLeaderboardCache(r redis.Cmdable, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{C: NewJSONCache(r), TTL: ttl}
}

func (l *LeaderboardCache) Get(ctx context.Context, limit int, dst any) (bool, error) {
	return l.C.Get(ctx, LeaderboardKey(limit), dst)
}

func (l *LeaderboardCache) Set(ctx context.Context, limit int, v any) error {
	return l.C.Set(ctx, LeaderboardKey(limit), v, l.TTL)
}

// InvalidateAll apaga todos os tamanhos de top-N em cache
func (l *LeaderboardCache) InvalidateAll(ctx context.Context) error {
	return l.C.DelPrefix(ctx, leaderboardPrefix)
}
