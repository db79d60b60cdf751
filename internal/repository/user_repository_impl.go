package repository

import (
	"strings"

	"picstorm-server/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByNickname(nickname string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("nickname = ?", nickname).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) FieldExists(field UserField, value string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Where(string(field)+" = ?", value).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SearchByNickname 昵称包含匹配（不区分大小写），按昵称排序。
func (r *UserRepository) SearchByNickname(part string, offset int, limit int) ([]model.User, error) {
	var users []model.User
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(part))) + "%"
	err := r.db.Where("LOWER(nickname) LIKE ? ESCAPE '!'", pattern).
		Order("nickname ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, err
}

// ListRelated 列出 userID 的订阅者或订阅对象，排除已封禁用户，按昵称排序。
func (r *UserRepository) ListRelated(userID uint, relation UserRelation, offset int, limit int) ([]model.User, error) {
	var users []model.User
	query := r.db.Model(&model.User{})
	if relation == RelationSubscribers {
		query = query.Joins("JOIN subscriptions ON subscriptions.subscriber_id = users.id").
			Where("subscriptions.target_id = ?", userID)
	} else {
		query = query.Joins("JOIN subscriptions ON subscriptions.target_id = users.id").
			Where("subscriptions.subscriber_id = ?", userID)
	}
	err := query.Where("users.role <> ?", model.RoleBanned).
		Order("users.nickname ASC").Order("users.id ASC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateRole(userID uint, role model.Role) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("role", role).Error
}

// BanWithPublications 在同一事务中封禁用户并将其全部 VISIBLE 发布置为 USER_BANNED，
// 已被单独封禁的发布保持不变。返回受影响的发布数量。
func (r *UserRepository) BanWithPublications(userID uint) (int64, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).Where("id = ?", userID).Update("role", model.RoleBanned)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		pubs := tx.Model(&model.Publication{}).
			Where("owner_id = ? AND state = ?", userID, model.PublicationVisible).
			Update("state", model.PublicationUserBanned)
		if pubs.Error != nil {
			return pubs.Error
		}
		affected = pubs.RowsAffected
		return nil
	})
	return affected, err
}

// ReplaceAvatar 将用户头像指向新图片，返回旧头像图片 ID（没有则为 nil）。
func (r *UserRepository) ReplaceAvatar(userID uint, pictureID uint) (*uint, error) {
	var previous *uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Select("id", "avatar_id").First(&user, userID).Error; err != nil {
			return err
		}
		previous = user.AvatarID
		return tx.Model(&model.User{}).Where("id = ?", userID).Update("avatar_id", pictureID).Error
	})
	return previous, err
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
