package model

import "time"

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time `json:"created"`
	Nickname     string    `json:"nickname" gorm:"uniqueIndex;size:20;not null"`
	Email        string    `json:"-" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"size:16;not null;default:ORDINARY;index"`
	AvatarID     *uint     `json:"-" gorm:"uniqueIndex"`
	Avatar       *Picture  `json:"-" gorm:"foreignKey:AvatarID;references:ID;constraint:OnDelete:SET NULL;"`
}
