package model

import "time"

type Subscription struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	SubscriberID uint      `json:"subscriber_id" gorm:"not null;uniqueIndex:idx_subscription_pair"`
	Subscriber   User      `json:"-" gorm:"foreignKey:SubscriberID;references:ID;constraint:OnDelete:CASCADE;"`
	TargetID     uint      `json:"target_id" gorm:"not null;uniqueIndex:idx_subscription_pair;index"`
	Target       User      `json:"-" gorm:"foreignKey:TargetID;references:ID;constraint:OnDelete:CASCADE;"`
	CreatedAt    time.Time `json:"created"`
}
