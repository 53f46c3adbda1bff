package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist marca tokens revogados no logout até o vencimento do JWT
type Denylist struct {
	R redis.Cmdable
}

func NewDenylist(r redis.Cmdable) *Denylist { return &Denylist{R: r} }

// Revoke ignora ttl <= 0 (token já expirado)
func (d *Denylist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.R.Set(ctx, RevokedKey(token), 1, ttl).Err()
}

func (d *Denylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := d.R.Exists(ctx, RevokedKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
