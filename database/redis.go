package database

import (
	"context"
	"os"
	"strconv"
	"time"

	"parcel-delivery/logger"

	"github.com/go-redis/redis/v8"
)

var Redis *redis.Client

// InitRedis connects the staged-booking store backend.
func InitRedis() (*redis.Client, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	db := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			db = parsed
		}
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Redis.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to redis", err)
		return nil, err
	}
	logger.Success("Successfully connected to redis")

	return Redis, nil
}
