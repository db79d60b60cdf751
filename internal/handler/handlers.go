package handler

import "picstorm-server/internal/service"

type AuthHandler struct {
	authService *service.AuthService
}

type PublicationHandler struct {
	publicationService *service.PublicationService
}

type UserHandler struct {
	userService *service.UserService
}

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

// Handlers 汇总所有 HTTP 处理器，供路由注册使用
type Handlers struct {
	Auth         *AuthHandler
	Publication  *PublicationHandler
	User         *UserHandler
	Subscription *SubscriptionHandler
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func NewPublicationHandler(publicationService *service.PublicationService) *PublicationHandler {
	return &PublicationHandler{publicationService: publicationService}
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

func NewHandlers(auth *AuthHandler, publication *PublicationHandler, user *UserHandler, subscription *SubscriptionHandler) *Handlers {
	return &Handlers{
		Auth:         auth,
		Publication:  publication,
		User:         user,
		Subscription: subscription,
	}
}
