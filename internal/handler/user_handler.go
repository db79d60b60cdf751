package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *UserHandler) Search(c *gin.Context) {
	index, size, ok := parsePage(c)
	if !ok {
		return
	}
	page, err := h.userService.SearchUsers(c.Request.Context(), optionalNickname(c), c.Query("nickname"), index, size)
	if err != nil {
		WriteServiceError(c, err, "搜索用户失败")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	profile, err := h.userService.GetProfile(c.Request.Context(), optionalNickname(c), id)
	if err != nil {
		WriteServiceError(c, err, "获取用户信息失败")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) GetAvatar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	avatar, err := h.userService.GetAvatar(c.Request.Context(), id)
	if err != nil {
		WriteServiceError(c, err, "获取头像失败")
		return
	}
	writePicture(c, avatar)
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	nickname, ok := currentNickname(c)
	if !ok {
		return
	}
	pictureType, data, ok := readPicture(c)
	if !ok {
		return
	}
	if err := h.userService.UploadAvatar(c.Request.Context(), nickname, pictureType, data); err != nil {
		WriteServiceError(c, err, "上传头像失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "头像已更新"})
}

func (h *UserHandler) BanUser(c *gin.Context) {
	nickname, ok := currentNickname(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.userService.BanUser(c.Request.Context(), nickname, id)
	if err != nil {
		WriteServiceError(c, err, "封禁用户失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *UserHandler) ChangeAdminRole(c *gin.Context) {
	nickname, ok := currentNickname(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.userService.ChangeAdminRole(c.Request.Context(), nickname, id)
	if err != nil {
		WriteServiceError(c, err, "变更角色失败")
		return
	}
	c.JSON(http.StatusOK, result)
}
