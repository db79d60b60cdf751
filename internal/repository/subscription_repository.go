package repository

import (
	"picstorm-server/internal/model"

	"gorm.io/gorm"
)

type SubscriptionStore interface {
	Exists(subscriberID uint, targetID uint) (bool, error)
	Toggle(subscriberID uint, targetID uint) (bool, error)
	TargetIDs(subscriberID uint) ([]uint, error)
	CountSubscribers(userID uint) (int64, error)
	CountSubscriptions(userID uint) (int64, error)
}

type SubscriptionRepository struct {
	db *gorm.DB
}

func (r *SubscriptionRepository) Exists(subscriberID uint, targetID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Subscription{}).
		Where("subscriber_id = ? AND target_id = ?", subscriberID, targetID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Toggle 存在则删除，不存在则创建，返回操作后的订阅状态。
func (r *SubscriptionRepository) Toggle(subscriberID uint, targetID uint) (bool, error) {
	subscribed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("subscriber_id = ? AND target_id = ?", subscriberID, targetID).Delete(&model.Subscription{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		subscribed = true
		return tx.Create(&model.Subscription{SubscriberID: subscriberID, TargetID: targetID}).Error
	})
	return subscribed, err
}

func (r *SubscriptionRepository) TargetIDs(subscriberID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.Subscription{}).Where("subscriber_id = ?", subscriberID).Pluck("target_id", &ids).Error
	return ids, err
}

// CountSubscribers 统计未封禁的订阅者数量
func (r *SubscriptionRepository) CountSubscribers(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).
		Joins("JOIN users ON users.id = subscriptions.subscriber_id").
		Where("subscriptions.target_id = ? AND users.role <> ?", userID, model.RoleBanned).
		Count(&count).Error
	return count, err
}

// CountSubscriptions 统计未封禁的订阅对象数量
func (r *SubscriptionRepository) CountSubscriptions(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).
		Joins("JOIN users ON users.id = subscriptions.target_id").
		Where("subscriptions.subscriber_id = ? AND users.role <> ?", userID, model.RoleBanned).
		Count(&count).Error
	return count, err
}
