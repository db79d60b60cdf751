package handler

import (
	"net/http"

	"picstorm-server/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Nickname string `json:"nickname" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	tokens, err := h.authService.Register(service.RegisterInput{
		Nickname: req.Nickname,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		WriteServiceError(c, err, "注册失败，请稍后重试")
		return
	}
	c.JSON(http.StatusCreated, tokens)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Nickname string `json:"nickname" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}

	tokens, err := h.authService.Login(req.Nickname, req.Password)
	if err != nil {
		WriteServiceError(c, err, "登录失败，请稍后重试")
		return
	}
	c.JSON(http.StatusOK, tokens)
}
