// Package storage 图片字节的对象存储端口。
package storage

import (
	"context"
	"errors"
	"strconv"
)

var ErrObjectNotFound = errors.New("storage object not found")

const (
	avatarPrefix      = "avatar/"
	publicationPrefix = "publication/"
)

// PictureStore 按名称保存、读取、删除图片字节。
type PictureStore interface {
	Save(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

// AvatarName 头像对象名：avatar/<pictureID>
func AvatarName(pictureID uint) string {
	return avatarPrefix + strconv.FormatUint(uint64(pictureID), 10)
}

// PublicationName 发布图片对象名：publication/<pictureID>
func PublicationName(pictureID uint) string {
	return publicationPrefix + strconv.FormatUint(uint64(pictureID), 10)
}
