package router

import (
	"picstorm-server/internal/handler"
	"picstorm-server/internal/middleware"
	"picstorm-server/internal/model"

	"github.com/gin-gonic/gin"
)

func registerPublicationRoutes(api *gin.RouterGroup, h *handler.PublicationHandler, authorized authorizeFunc, uploadLimiter, uploadBodyLimit gin.HandlerFunc) {
	group := api.Group("/publication")

	group.GET("/feed", middleware.OptionalJWTAuth(), h.GetFeed)
	group.GET("/:id/picture", h.GetPicture)

	group.POST("", chain(authorized(model.AuthorityUpload), uploadBodyLimit, uploadLimiter, h.Upload)...)
	group.PUT("/:id/reaction", chain(authorized(model.AuthorityReact), h.SetReaction)...)
	group.PUT("/:id", chain(authorized(model.AuthorityBanPublication), h.Ban)...)
	group.DELETE("/:id", chain(authorized(model.AuthorityUpload), h.Delete)...)
}
