package handler

import (
	"net/http"
	"strconv"

	"picstorm-server/internal/feed"
	"picstorm-server/internal/model"
	"picstorm-server/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *PublicationHandler) Upload(c *gin.Context) {
	nickname, ok := currentNickname(c)
	if !ok {
		return
	}
	pictureType, data, ok := readPicture(c)
	if !ok {
		return
	}

	publication, err := h.publicationService.Upload(c.Request.Context(), nickname, pictureType, data)
	if err != nil {
		WriteServiceError(c, err, "上传失败，请稍后重试")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"publicationId": publication.ID})
}

func (h *PublicationHandler) GetFeed(c *gin.Context) {
	date, ok := feed.ParseDateConstraint(c.Query("dateFilter"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的日期过滤条件"})
		return
	}
	sort, ok := feed.ParseSortConstraint(c.Query("sortFilter"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的排序条件"})
		return
	}
	user, ok := feed.ParseUserConstraint(c.Query("userFilter"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的用户过滤条件"})
		return
	}

	var filterUserID *uint
	if raw := c.Query("filterUser"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的用户 ID"})
			return
		}
		v := uint(id)
		filterUserID = &v
	}

	index, size, ok := parsePage(c)
	if !ok {
		return
	}

	page, err := h.publicationService.GetFeed(c.Request.Context(), service.FeedRequest{
		ViewerNickname: optionalNickname(c),
		Date:           date,
		Sort:           sort,
		User:           user,
		FilterUserID:   filterUserID,
		Index:          index,
		Size:           size,
	})
	if err != nil {
		WriteServiceError(c, err, "获取动态失败")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PublicationHandler) GetPicture(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	picture, err := h.publicationService.GetPicture(c.Request.Context(), id)
	if err != nil {
		WriteServiceError(c, err, "获取图片失败")
		return
	}
	writePicture(c, picture)
}

// SetReaction 请求体 {"reaction": "LIKE" | "DISLIKE" | null}，null 表示清除
func (h *PublicationHandler) SetReaction(c *gin.Context) {
	nickname, ok := currentNickname(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reaction *string `json:"reaction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}
	var next *model.ReactionType
	if req.Reaction != nil {
		reaction, valid := model.ParseReactionType(*req.Reaction)
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 Reaction 类型"})
			return
		}
		next = &reaction
	}

	result, err := h.publicationService.SetReaction(c.Request.Context(), nickname, id, next)
	if err != nil {
		WriteServiceError(c, err, "设置 Reaction 失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reaction": result})
}

func (h *PublicationHandler) Ban(c *gin.Context) {
	nickname, ok := currentNickname(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.publicationService.Ban(c.Request.Context(), nickname, id); err != nil {
		WriteServiceError(c, err, "封禁发布失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "发布已封禁"})
}

func (h *PublicationHandler) Delete(c *gin.Context) {
	nickname, ok := currentNickname(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.publicationService.Delete(c.Request.Context(), nickname, id); err != nil {
		WriteServiceError(c, err, "删除发布失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "发布已删除"})
}
