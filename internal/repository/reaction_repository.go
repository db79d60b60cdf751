package repository

import "picstorm-server/internal/model"

// RatingDeltaFunc 计算 Reaction 迁移对 rating 的增量
type RatingDeltaFunc func(oldReaction, newReaction *model.ReactionType) int64

// ReactionChange 一次 Reaction 变更的结果
type ReactionChange struct {
	Previous *model.ReactionType
	Current  *model.ReactionType
	Delta    int64
}

type ReactionStore interface {
	FindByPublicationAndUser(publicationID uint, userID uint) (*model.Reaction, error)
	Apply(publicationID uint, userID uint, next *model.ReactionType, delta RatingDeltaFunc) (*ReactionChange, error)
	CountByPublication(publicationID uint) (likes int64, dislikes int64, err error)
}
