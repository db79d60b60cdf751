package httpx

import (
	"net/http"

	"picstorm-server/internal/common"
	"picstorm-server/internal/logger"

	"github.com/gin-gonic/gin"
)

// WriteServiceError writes a standardized HTTP error response for service-layer errors.
func WriteServiceError(c *gin.Context, err error, fallbackMessage string) {
	if serviceErr, ok := common.AsServiceError(err); ok {
		status := ServiceErrorStatus(serviceErr.Code)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", logger.Fields{
				"path":  c.FullPath(),
				"error": serviceErr.Error(),
			})
		}
		c.JSON(status, gin.H{"error": serviceErr.Message})
		return
	}
	logger.Error("request failed", logger.Fields{"path": c.FullPath(), "error": err.Error()})
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMessage})
}

func ServiceErrorStatus(code common.ErrorCode) int {
	switch code {
	case common.ErrorCodeValidation:
		return http.StatusBadRequest
	case common.ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case common.ErrorCodeForbidden:
		return http.StatusForbidden
	case common.ErrorCodeConflict:
		return http.StatusConflict
	case common.ErrorCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
