package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const defaultBodyLimitBytes int64 = 2 * 1024 * 1024

// multipart 表单头部预留
const multipartOverheadBytes int64 = 64 * 1024

// BodyLimitMiddleware 限制普通请求体大小，图片上传路由由 UploadBodyLimitMiddleware 单独限制
func BodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = defaultBodyLimitBytes
	}
	return func(c *gin.Context) {
		if isUploadRequest(c.Request) {
			c.Next()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// UploadBodyLimitMiddleware 限制图片上传请求体大小，maxBytesFn 返回单张图片上限。
func UploadBodyLimitMiddleware(maxBytesFn func() int) gin.HandlerFunc {
	return func(c *gin.Context) {
		maxPicture := int64(maxBytesFn())
		maxBytes := maxPicture + multipartOverheadBytes

		if c.Request.ContentLength > maxBytes && c.Request.ContentLength != -1 {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("图片大小不能超过 %dKB", maxPicture/1024)})
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func isUploadRequest(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	path := strings.TrimSuffix(r.URL.Path, "/")
	return strings.HasSuffix(path, "/publication") || strings.HasSuffix(path, "/avatar")
}
