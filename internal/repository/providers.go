package repository

import (
	"gorm.io/gorm"
)

type Repositories struct {
	User         UserStore
	Picture      PictureStore
	Publication  PublicationStore
	Reaction     ReactionStore
	Subscription SubscriptionStore
}

func NewUserRepository(db *gorm.DB) UserStore {
	return &UserRepository{db: db}
}

func NewPictureRepository(db *gorm.DB) PictureStore {
	return &PictureRepository{db: db}
}

func NewPublicationRepository(db *gorm.DB) PublicationStore {
	return &PublicationRepository{db: db}
}

func NewReactionRepository(db *gorm.DB) ReactionStore {
	return &ReactionRepository{db: db}
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionStore {
	return &SubscriptionRepository{db: db}
}

func NewRepositories(
	user UserStore,
	picture PictureStore,
	publication PublicationStore,
	reaction ReactionStore,
	subscription SubscriptionStore,
) *Repositories {
	return &Repositories{
		User:         user,
		Picture:      picture,
		Publication:  publication,
		Reaction:     reaction,
		Subscription: subscription,
	}
}
