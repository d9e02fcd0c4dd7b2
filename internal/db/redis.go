package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis connects using a redis:// URL and pings within a 5s budget.
func NewRedis(ctx context.Context, redisURL string, logger *zap.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("redis connection established", zap.String("addr", opt.Addr), zap.Int("db", opt.DB))
	return &Redis{client: client, logger: logger}, nil
}

func (r *Redis) Client() *redis.Client {
	return r.client
}

func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() {
	r.logger.Info("closing redis connection")
	if err := r.client.Close(); err != nil {
		r.logger.Warn("redis close failed", zap.Error(err))
	}
}
