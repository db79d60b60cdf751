//go:build wireinject
// +build wireinject

package di

import (
	"picstorm-server/internal/handler"
	"picstorm-server/internal/repository"
	"picstorm-server/internal/router"
	"picstorm-server/internal/service"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func InitializeApplication(gormDB *gorm.DB, redisClient *redis.Client) (*Application, error) {
	wire.Build(
		repository.NewUserRepository,
		repository.NewPictureRepository,
		repository.NewPublicationRepository,
		repository.NewReactionRepository,
		repository.NewSubscriptionRepository,
		repository.NewRepositories,
		ProvideRoleCache,
		ProvideObjectStore,
		service.NewAuthService,
		service.NewUserService,
		service.NewPublicationService,
		service.NewSubscriptionService,
		handler.NewAuthHandler,
		handler.NewPublicationHandler,
		handler.NewUserHandler,
		handler.NewSubscriptionHandler,
		handler.NewHandlers,
		router.NewRouter,
		NewApplication,
	)
	return nil, nil
}
