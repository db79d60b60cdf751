package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrPublicationNotVisible 发布处于 BANNED / USER_BANNED 状态
	ErrPublicationNotVisible = errors.New("publication is not visible")
)

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation 判断是否为唯一约束冲突。
// 开启 TranslateError 时驱动返回 gorm.ErrDuplicatedKey，否则按各数据库的错误文本识别。
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
