package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"picstorm-server/internal/common/httpx"
	"picstorm-server/internal/middleware"
	"picstorm-server/internal/model"
	"picstorm-server/internal/service"

	"github.com/gin-gonic/gin"
)

func WriteServiceError(c *gin.Context, err error, fallbackMessage string) {
	httpx.WriteServiceError(c, err, fallbackMessage)
}

// currentNickname 读取 JWTAuth 写入的昵称；缺失时写出 401。
func currentNickname(c *gin.Context) (string, bool) {
	value, exists := c.Get(middleware.ContextNickname)
	nickname, ok := value.(string)
	if !exists || !ok || nickname == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户信息"})
		return "", false
	}
	return nickname, true
}

// optionalNickname 匿名访问时返回空串
func optionalNickname(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextNickname)
	nickname, _ := value.(string)
	return nickname
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 ID"})
		return 0, false
	}
	return uint(id), true
}

// parsePage index 与 size 均为必填
func parsePage(c *gin.Context) (int, int, bool) {
	index, err := strconv.Atoi(c.Query("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "页码必须是大于等于 0 的整数"})
		return 0, 0, false
	}
	size, err := strconv.Atoi(c.Query("size"))
	if err != nil || size < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "每页数量必须是大于等于 1 的整数"})
		return 0, 0, false
	}
	return index, size, true
}

// readPicture 读取 multipart 中的 picture 文件与 pictureType 字段
func readPicture(c *gin.Context) (model.PictureType, []byte, bool) {
	pictureType, ok := model.ParsePictureType(c.PostForm("pictureType"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的图片类型"})
		return "", nil, false
	}

	file, err := c.FormFile("picture")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "图片过大"})
			return "", nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "请选择图片"})
		return "", nil, false
	}
	limit := int64(service.MaxPictureBytes())
	if file.Size > limit {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("图片大小不能超过 %dMB", limit/1024/1024)})
		return "", nil, false
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取图片失败"})
		return "", nil, false
	}
	defer func() { _ = src.Close() }()

	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取图片失败"})
		return "", nil, false
	}
	return pictureType, data, true
}

func writePicture(c *gin.Context, picture *service.PictureContent) {
	c.Header("X-Picture-Type", string(picture.Type))
	c.Data(http.StatusOK, picture.Type.MimeType(), picture.Data)
}
