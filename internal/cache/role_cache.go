package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"picstorm-server/internal/logger"
	"picstorm-server/internal/model"

	"github.com/redis/go-redis/v9"
)

const roleCacheTTL = time.Minute

type cachedRole struct {
	Role      model.Role
	ExpiresAt time.Time
}

// RoleCache 缓存用户当前角色，优先 Redis，其次进程内存。
// 封禁等角色变更后必须调用 Invalidate。
type RoleCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	local  sync.Map // uint -> cachedRole
}

// NewRoleCache client 可以为 nil
func NewRoleCache(client *redis.Client, prefix string) *RoleCache {
	return &RoleCache{client: client, prefix: prefix, ttl: roleCacheTTL}
}

func (c *RoleCache) key(userID uint) string {
	return Key(c.prefix, "auth", "user_role", strconv.FormatUint(uint64(userID), 10))
}

func (c *RoleCache) Get(ctx context.Context, userID uint) (model.Role, bool) {
	if c.client != nil {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if val, err := c.client.Get(ctx, c.key(userID)).Result(); err == nil {
			role := model.Role(val)
			if role.Valid() {
				c.local.Store(userID, cachedRole{Role: role, ExpiresAt: time.Now().Add(c.ttl)})
				return role, true
			}
		}
	}

	if val, ok := c.local.Load(userID); ok {
		if cached, typeOk := val.(cachedRole); typeOk {
			if time.Now().Before(cached.ExpiresAt) {
				return cached.Role, true
			}
			c.local.Delete(userID)
		}
	}
	return "", false
}

func (c *RoleCache) Set(ctx context.Context, userID uint, role model.Role) {
	c.local.Store(userID, cachedRole{Role: role, ExpiresAt: time.Now().Add(c.ttl)})
	if c.client != nil {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := c.client.Set(ctx, c.key(userID), string(role), c.ttl).Err(); err != nil {
			logger.Warn("⚠️ 写入角色缓存失败", logger.Fields{"user_id": userID, "error": err.Error()})
		}
	}
}

func (c *RoleCache) Invalidate(ctx context.Context, userID uint) {
	c.local.Delete(userID)
	if c.client != nil {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		// 失败时其它实例可能在 TTL 内仍读到旧角色
		if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
			logger.Warn("⚠️ 清除角色缓存失败", logger.Fields{"user_id": userID, "error": err.Error()})
		}
	}
}
