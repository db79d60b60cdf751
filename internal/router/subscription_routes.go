package router

import (
	"picstorm-server/internal/handler"
	"picstorm-server/internal/middleware"
	"picstorm-server/internal/model"

	"github.com/gin-gonic/gin"
)

func registerSubscriptionRoutes(api *gin.RouterGroup, h *handler.SubscriptionHandler, authorized authorizeFunc) {
	api.GET("/subscribers/:id", middleware.OptionalJWTAuth(), h.ListSubscribers)
	api.GET("/subscriptions/:id", middleware.OptionalJWTAuth(), h.ListSubscriptions)
	api.PUT("/subscription/:id", chain(authorized(model.AuthoritySubscribe), h.Toggle)...)
}
