package config

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// InitRedis initializes the Redis connection used by the rate limiter. The
// client is returned rather than stored globally so it can be injected and
// substituted in tests.
func InitRedis(cfg *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	log.Println("Successfully connected to Redis!")
	return client, nil
}
