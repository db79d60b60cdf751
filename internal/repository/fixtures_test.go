package repository

import (
	"testing"
	"time"

	"picstorm-server/internal/model"

	"gorm.io/gorm"
)

func createUser(t *testing.T, gdb *gorm.DB, nickname string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Nickname: nickname, Email: nickname + "@example.com", PasswordHash: "x", Role: role}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return u
}

func createPublication(t *testing.T, gdb *gorm.DB, owner *model.User, state model.PublicationState, created time.Time, rating int64) *model.Publication {
	t.Helper()
	pic := &model.Picture{Type: model.PictureTypePNG}
	if err := gdb.Create(pic).Error; err != nil {
		t.Fatalf("创建图片失败: %v", err)
	}
	p := &model.Publication{OwnerID: owner.ID, PictureID: pic.ID, State: state, Rating: rating, CreatedAt: created}
	if err := gdb.Create(p).Error; err != nil {
		t.Fatalf("创建发布失败: %v", err)
	}
	return p
}

func subscribe(t *testing.T, gdb *gorm.DB, subscriber, target *model.User) {
	t.Helper()
	if err := gdb.Create(&model.Subscription{SubscriberID: subscriber.ID, TargetID: target.ID}).Error; err != nil {
		t.Fatalf("创建订阅失败: %v", err)
	}
}
