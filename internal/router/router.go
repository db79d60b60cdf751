package router

import (
	"picstorm-server/internal/config"
	"picstorm-server/internal/handler"
	"picstorm-server/internal/middleware"
	"picstorm-server/internal/model"
	"picstorm-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Router struct {
	handlers    *handler.Handlers
	roles       middleware.RoleLookup
	redisClient *redis.Client
}

// NewRouter redisClient 可以为 nil，此时限流只在进程内生效
func NewRouter(handlers *handler.Handlers, userService *service.UserService, redisClient *redis.Client) *Router {
	return &Router{
		handlers:    handlers,
		roles:       userService,
		redisClient: redisClient,
	}
}

func (rt *Router) Init(r *gin.Engine) {
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeaders())
	if config.Get().Metrics.Enabled {
		r.Use(middleware.Metrics())
	}

	registerMetricsRoute(r)

	api := r.Group("/api")
	api.Use(middleware.BodyLimitMiddleware(0))

	prefix := config.Get().Redis.Prefix
	// 同一组路由共用一个限流实例
	authLimiter := middleware.RateLimitMiddleware(rt.redisClient, prefix, middleware.AuthRateRule)
	uploadLimiter := middleware.RateLimitMiddleware(rt.redisClient, prefix, middleware.UploadRateRule)
	uploadBodyLimit := middleware.UploadBodyLimitMiddleware(service.MaxPictureBytes)

	registerPublicRoutes(api)
	registerAuthRoutes(api, authLimiter, rt.handlers.Auth)
	registerPublicationRoutes(api, rt.handlers.Publication, rt.authorized, uploadLimiter, uploadBodyLimit)
	registerUserRoutes(api, rt.handlers.User, rt.authorized, uploadLimiter, uploadBodyLimit)
	registerSubscriptionRoutes(api, rt.handlers.Subscription, rt.authorized)
}

// authorized 返回登录、封禁检查与权限校验的中间件链
func (rt *Router) authorized(authority model.Authority) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		middleware.JWTAuth(),
		middleware.BannedUserCheck(rt.roles),
		middleware.RequireAuthority(authority),
	}
}

type authorizeFunc func(authority model.Authority) []gin.HandlerFunc

func chain(handlers []gin.HandlerFunc, more ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers)+len(more))
	out = append(out, handlers...)
	return append(out, more...)
}
