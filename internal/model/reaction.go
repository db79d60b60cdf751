package model

import (
	"strings"
	"time"
)

type ReactionType string

const (
	ReactionLike    ReactionType = "LIKE"
	ReactionDislike ReactionType = "DISLIKE"
)

func ParseReactionType(s string) (ReactionType, bool) {
	switch t := ReactionType(strings.ToUpper(strings.TrimSpace(s))); t {
	case ReactionLike, ReactionDislike:
		return t, true
	default:
		return "", false
	}
}

// Reaction 每个 (publication, user) 至多一条，由联合唯一索引保证。
type Reaction struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	Type          ReactionType `json:"type" gorm:"size:8;not null"`
	PublicationID uint         `json:"publication_id" gorm:"not null;uniqueIndex:idx_reaction_publication_user"`
	Publication   Publication  `json:"-" gorm:"foreignKey:PublicationID;references:ID;constraint:OnDelete:CASCADE;"`
	UserID        uint         `json:"user_id" gorm:"not null;uniqueIndex:idx_reaction_publication_user;index"`
	User          User         `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;"`
	CreatedAt     time.Time    `json:"created"`
}
