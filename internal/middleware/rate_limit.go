package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"picstorm-server/internal/cache"
	"picstorm-server/internal/config"
	"picstorm-server/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// IPRateLimiter 进程内按 IP 的令牌桶
type IPRateLimiter struct {
	ips sync.Map
	mu  sync.Mutex
}

// clientIdleTTL 超过该时长未出现的 IP 会被清理，不补充令牌的计数也随之失效
const clientIdleTTL = 3 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	// 最近一次应用的配置，limit 为 0 时 limiter.Burst() 会随消耗递减，不能用来比较
	limit rate.Limit
	burst int
}

func NewIPRateLimiter() *IPRateLimiter {
	i := &IPRateLimiter{}

	go i.cleanupLoop()

	return i
}

func (i *IPRateLimiter) getLimiter(ip string, r rate.Limit, b int) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	if v, ok := i.ips.Load(ip); ok {
		c := v.(*client)
		c.lastSeen = time.Now()
		// 配置热更新后同步 limit 和 burst
		if c.limit != r {
			c.limiter.SetLimit(r)
			c.limit = r
		}
		if c.burst != b {
			c.limiter.SetBurst(b)
			c.burst = b
		}
		return c.limiter
	}

	limiter := rate.NewLimiter(r, b)
	i.ips.Store(ip, &client{limiter: limiter, lastSeen: time.Now(), limit: r, burst: b})

	return limiter
}

func (i *IPRateLimiter) cleanupLoop() {
	for {
		time.Sleep(1 * time.Minute)
		i.mu.Lock()
		i.ips.Range(func(key, value interface{}) bool {
			client := value.(*client)
			if time.Since(client.lastSeen) > clientIdleTTL {
				i.ips.Delete(key)
			}
			return true
		})
		i.mu.Unlock()
	}
}

// RateRule 某一组路由的限流参数
type RateRule struct {
	Scope string
	RPS   float64
	Burst int
}

func AuthRateRule() RateRule {
	cfg := config.Get().RateLimit
	return RateRule{Scope: "auth", RPS: cfg.AuthRPS, Burst: cfg.AuthBurst}
}

func UploadRateRule() RateRule {
	cfg := config.Get().RateLimit
	return RateRule{Scope: "upload", RPS: cfg.UploadRPS, Burst: cfg.UploadBurst}
}

// RateLimitMiddleware 按来源 IP 限流。Redis 可用时多实例共享计数，
// Redis 出错时回退到进程内令牌桶。
func RateLimitMiddleware(redisClient *redis.Client, prefix string, ruleFn func() RateRule) gin.HandlerFunc {
	var (
		limiter *IPRateLimiter
		once    sync.Once
	)

	return func(c *gin.Context) {
		if !config.Get().RateLimit.Enabled {
			c.Next()
			return
		}

		rule := ruleFn()
		if rule.Burst <= 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()

		if redisClient != nil {
			ok, err := allowByRedisRateLimit(redisClient, cache.Key(prefix, "rate", rule.Scope), ip, rule.RPS, rule.Burst)
			if err == nil {
				if !ok {
					tooManyRequests(c)
					return
				}
				c.Next()
				return
			}
			logger.Warn("⚠️ Redis 限流失败，回退内存限流", logger.Fields{"scope": rule.Scope, "error": err.Error()})
		}

		once.Do(func() {
			limiter = NewIPRateLimiter()
		})

		if !limiter.getLimiter(ip, rate.Limit(rule.RPS), rule.Burst).Allow() {
			tooManyRequests(c)
			return
		}
		c.Next()
	}
}

func tooManyRequests(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "请求过于频繁，请稍后再试"})
	c.Abort()
}

// allowByRedisRateLimit 固定窗口计数：窗口长度为 burst/rps 秒，窗口内最多放行 burst 次。
// burst 非正时不限流；rps 非正时不补充额度，计数在 IP 空闲 clientIdleTTL 后过期。
func allowByRedisRateLimit(client *redis.Client, keyPrefix, ip string, rps float64, burst int) (bool, error) {
	if burst <= 0 {
		return true, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	key := keyPrefix + ":" + ip
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis rate limit failed: %w", err)
	}

	if rps <= 0 {
		if err := client.PExpire(ctx, key, clientIdleTTL).Err(); err != nil {
			return false, fmt.Errorf("redis rate limit expire failed: %w", err)
		}
		return count <= int64(burst), nil
	}

	if count == 1 {
		window := time.Duration(math.Ceil(float64(burst)/rps*1000)) * time.Millisecond
		if window < time.Second {
			window = time.Second
		}
		if err := client.PExpire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("redis rate limit expire failed: %w", err)
		}
	}
	return count <= int64(burst), nil
}
