package service

import (
	"time"

	"picstorm-server/internal/cache"
	repo "picstorm-server/internal/repository"
	"picstorm-server/internal/storage"
)

type AuthService struct {
	userStore repo.UserStore
}

type UserService struct {
	userStore         repo.UserStore
	pictureStore      repo.PictureStore
	publicationStore  repo.PublicationStore
	subscriptionStore repo.SubscriptionStore
	objects           storage.PictureStore
	roles             *cache.RoleCache
}

type PublicationService struct {
	userStore         repo.UserStore
	pictureStore      repo.PictureStore
	publicationStore  repo.PublicationStore
	reactionStore     repo.ReactionStore
	objects           storage.PictureStore
	now               func() time.Time
	reactionRetryWait time.Duration
}

type SubscriptionService struct {
	userStore         repo.UserStore
	pictureStore      repo.PictureStore
	subscriptionStore repo.SubscriptionStore
}

func NewAuthService(repos *repo.Repositories) *AuthService {
	return &AuthService{userStore: repos.User}
}

func NewUserService(repos *repo.Repositories, objects storage.PictureStore, roles *cache.RoleCache) *UserService {
	return &UserService{
		userStore:         repos.User,
		pictureStore:      repos.Picture,
		publicationStore:  repos.Publication,
		subscriptionStore: repos.Subscription,
		objects:           objects,
		roles:             roles,
	}
}

func NewPublicationService(repos *repo.Repositories, objects storage.PictureStore) *PublicationService {
	return &PublicationService{
		userStore:         repos.User,
		pictureStore:      repos.Picture,
		publicationStore:  repos.Publication,
		reactionStore:     repos.Reaction,
		objects:           objects,
		now:               time.Now,
		reactionRetryWait: 10 * time.Millisecond,
	}
}

func NewSubscriptionService(repos *repo.Repositories) *SubscriptionService {
	return &SubscriptionService{
		userStore:         repos.User,
		pictureStore:      repos.Picture,
		subscriptionStore: repos.Subscription,
	}
}
