package router

import (
	"picstorm-server/internal/handler"
	"picstorm-server/internal/middleware"
	"picstorm-server/internal/model"

	"github.com/gin-gonic/gin"
)

func registerUserRoutes(api *gin.RouterGroup, h *handler.UserHandler, authorized authorizeFunc, uploadLimiter, uploadBodyLimit gin.HandlerFunc) {
	userGroup := api.Group("/user")

	userGroup.GET("/search", middleware.OptionalJWTAuth(), h.Search)
	userGroup.GET("/:id/profile", middleware.OptionalJWTAuth(), h.GetProfile)
	userGroup.GET("/:id/avatar", h.GetAvatar)

	userGroup.POST("/avatar", chain(authorized(model.AuthorityUpload), uploadBodyLimit, uploadLimiter, h.UploadAvatar)...)
	userGroup.PUT("/:id/ban", chain(authorized(model.AuthorityBanUser), h.BanUser)...)
	userGroup.PUT("/:id/admin", chain(authorized(model.AuthorityManageAdmins), h.ChangeAdminRole)...)
}
