// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/talentmarket/internal/config"
)

// Redis is the shared store behind the pricing catalog cache, the revoked
// access-token list and the cross-instance rate-limit window.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects and pings once so the API refuses to start without the
// store it uses for token revocation.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.PoolTimeout = cfg.PoolTimeout
	opts.ConnMaxIdleTime = cfg.ConnMaxIdleTime

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // cleanup on connection failure
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Redis{Client: client}, nil
}

func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping is the readiness check for /readyz.
func (r *Redis) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := r.Client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

// PoolStats feeds /api/admin/stats/redis.
func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}
