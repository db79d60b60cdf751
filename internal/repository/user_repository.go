package repository

import "picstorm-server/internal/model"

type UserField string

const (
	UserFieldNickname UserField = "nickname"
	UserFieldEmail    UserField = "email"
)

// UserRelation 订阅关系方向，用于列出某用户的订阅者或订阅对象。
type UserRelation int

const (
	RelationSubscribers UserRelation = iota
	RelationSubscriptions
)

type UserStore interface {
	FindByID(id uint) (*model.User, error)
	FindByNickname(nickname string) (*model.User, error)
	Create(user *model.User) error
	FieldExists(field UserField, value string) (bool, error)
	SearchByNickname(part string, offset int, limit int) ([]model.User, error)
	ListRelated(userID uint, relation UserRelation, offset int, limit int) ([]model.User, error)
	UpdateRole(userID uint, role model.Role) error
	BanWithPublications(userID uint) (int64, error)
	ReplaceAvatar(userID uint, pictureID uint) (*uint, error)
}
