package di

import (
	"picstorm-server/internal/cache"
	"picstorm-server/internal/config"
	"picstorm-server/internal/router"
	"picstorm-server/internal/storage"

	"github.com/redis/go-redis/v9"
)

type Application struct {
	Router *router.Router
}

func NewApplication(r *router.Router) *Application {
	return &Application{Router: r}
}

// ProvideRoleCache client 为 nil 时仅使用进程内缓存
func ProvideRoleCache(client *redis.Client) *cache.RoleCache {
	return cache.NewRoleCache(client, config.Get().Redis.Prefix)
}

// ProvideObjectStore 以本地目录作为图片对象存储
func ProvideObjectStore() (storage.PictureStore, error) {
	store, err := storage.NewLocalStore(config.Get().Storage.Path)
	if err != nil {
		return nil, err
	}
	return store, nil
}
