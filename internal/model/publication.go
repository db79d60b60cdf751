package model

import "time"

type PublicationState string

const (
	PublicationVisible    PublicationState = "VISIBLE"
	PublicationBanned     PublicationState = "BANNED"
	PublicationUserBanned PublicationState = "USER_BANNED"
)

// Publication.Rating 是其 Reaction 的净值缓存：LIKE 数 - DISLIKE 数。
type Publication struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	OwnerID   uint             `json:"owner_id" gorm:"not null;index"`
	Owner     User             `json:"-" gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE;"`
	PictureID uint             `json:"-" gorm:"not null;uniqueIndex"`
	Picture   Picture          `json:"-" gorm:"foreignKey:PictureID;references:ID;constraint:OnDelete:CASCADE;"`
	State     PublicationState `json:"state" gorm:"size:16;not null;default:VISIBLE;index"`
	Rating    int64            `json:"rating" gorm:"not null;default:0;index"`
	CreatedAt time.Time        `json:"created" gorm:"index"`
}
