package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *SubscriptionHandler) ListSubscribers(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	index, size, ok := parsePage(c)
	if !ok {
		return
	}
	page, err := h.subscriptionService.ListSubscribers(c.Request.Context(), optionalNickname(c), id, index, size)
	if err != nil {
		WriteServiceError(c, err, "获取订阅者失败")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	index, size, ok := parsePage(c)
	if !ok {
		return
	}
	page, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), optionalNickname(c), id, index, size)
	if err != nil {
		WriteServiceError(c, err, "获取订阅列表失败")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *SubscriptionHandler) Toggle(c *gin.Context) {
	nickname, ok := currentNickname(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.subscriptionService.Toggle(c.Request.Context(), nickname, id)
	if err != nil {
		WriteServiceError(c, err, "变更订阅失败")
		return
	}
	c.JSON(http.StatusOK, result)
}
