package model

import (
	"strings"
	"time"
)

type PictureType string

const (
	PictureTypeJPEG PictureType = "JPEG"
	PictureTypePNG  PictureType = "PNG"
	PictureTypeGIF  PictureType = "GIF"
	PictureTypeWEBP PictureType = "WEBP"
	PictureTypeBMP  PictureType = "BMP"
)

var pictureMimeTypes = map[PictureType]string{
	PictureTypeJPEG: "image/jpeg",
	PictureTypePNG:  "image/png",
	PictureTypeGIF:  "image/gif",
	PictureTypeWEBP: "image/webp",
	PictureTypeBMP:  "image/bmp",
}

// ParsePictureType 解析客户端传入的图片类型（不区分大小写）
func ParsePictureType(s string) (PictureType, bool) {
	t := PictureType(strings.ToUpper(strings.TrimSpace(s)))
	if t == "JPG" {
		t = PictureTypeJPEG
	}
	_, ok := pictureMimeTypes[t]
	return t, ok
}

// MimeType 返回图片类型对应的 Content-Type
func (t PictureType) MimeType() string {
	if mime, ok := pictureMimeTypes[t]; ok {
		return mime
	}
	return "application/octet-stream"
}

// Picture 只保存元数据，图片字节存放在对象存储中。
type Picture struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	Type      PictureType `json:"type" gorm:"size:8;not null"`
	CreatedAt time.Time   `json:"created"`
}
