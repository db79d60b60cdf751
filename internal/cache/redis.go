package cache

import (
	"context"
	"fmt"
	"time"

	"picstorm-server/internal/config"
	"picstorm-server/internal/logger"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient 按配置连接 Redis；未启用或不可用时返回 nil，调用方降级为内存缓存。
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Warn("⚠️ Redis 不可用，降级为内存模式", logger.Fields{"error": err.Error()})
		return nil
	}

	logger.Info("✅ Redis 已连接", logger.Fields{"addr": cfg.Addr, "db": cfg.DB})
	return client
}

// CloseRedisClient 关闭 Redis 客户端连接，nil 安全。
func CloseRedisClient(client *redis.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil {
		return fmt.Errorf("close redis failed: %w", err)
	}
	return nil
}

// Key 基于前缀拼接 Redis 键名。
func Key(prefix string, parts ...string) string {
	if prefix == "" {
		prefix = "picstorm"
	}
	key := prefix
	for _, p := range parts {
		key += ":" + p
	}
	return key
}
