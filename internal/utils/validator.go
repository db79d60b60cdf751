package utils

import (
	"net/http"
	"regexp"
	"unicode/utf8"

	"picstorm-server/internal/model"
)

var (
	nicknamePattern = regexp.MustCompile(`^[\p{L}0-9_ .-]+$`)
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)*@[A-Za-z0-9][A-Za-z0-9-]*(\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,}$`)
)

const (
	MaxNicknameLength = 20
	MaxPasswordLength = 100
	MinPasswordLength = 8
)

// ValidateNickname checks if the nickname meets the requirements.
func ValidateNickname(nickname string) (bool, string) {
	if nickname == "" {
		return false, "请输入昵称"
	}
	if utf8.RuneCountInString(nickname) > MaxNicknameLength {
		return false, "昵称长度不能超过 20 个字符"
	}
	if !nicknamePattern.MatchString(nickname) {
		return false, "昵称只能包含字母、数字、空格、下划线、点和短横线"
	}
	return true, ""
}

func ValidateEmail(email string) (bool, string) {
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return false, "邮箱格式不正确"
	}
	return true, ""
}

// ValidatePassword checks if the password meets the requirements.
func ValidatePassword(password string) (bool, string) {
	if len(password) < MinPasswordLength {
		return false, "密码最少8位"
	}
	if len(password) > MaxPasswordLength {
		return false, "密码长度不能超过 100 个字符"
	}
	return true, ""
}

var sniffedPictureTypes = map[string]model.PictureType{
	"image/jpeg":     model.PictureTypeJPEG,
	"image/png":      model.PictureTypePNG,
	"image/gif":      model.PictureTypeGIF,
	"image/webp":     model.PictureTypeWEBP,
	"image/bmp":      model.PictureTypeBMP,
	"image/x-ms-bmp": model.PictureTypeBMP,
}

// ValidatePictureContent 校验图片真实内容与声明的类型一致。
func ValidatePictureContent(data []byte, declared model.PictureType) (bool, string) {
	if len(data) == 0 {
		return false, "图片内容为空"
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	contentType := http.DetectContentType(head)
	sniffed, ok := sniffedPictureTypes[contentType]
	if !ok {
		return false, "不支持的图片类型(" + contentType + ")"
	}
	if sniffed != declared {
		return false, "图片真实类型(" + string(sniffed) + ")与声明类型(" + string(declared) + ")不匹配"
	}
	return true, ""
}
