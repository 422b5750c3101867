package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mroshb/trivia_bot/internal/config"
	"github.com/mroshb/trivia_bot/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Connect opens the Redis client and checks it answers.
func Connect(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connected", "addr", cfg.RedisAddr)
	return client, nil
}
