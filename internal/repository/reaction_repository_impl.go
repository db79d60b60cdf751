package repository

import (
	"time"

	"picstorm-server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReactionRepository struct {
	db *gorm.DB
}

func (r *ReactionRepository) FindByPublicationAndUser(publicationID uint, userID uint) (*model.Reaction, error) {
	var reaction model.Reaction
	if err := r.db.Where("publication_id = ? AND user_id = ?", publicationID, userID).First(&reaction).Error; err != nil {
		return nil, err
	}
	return &reaction, nil
}

// Apply 在一个事务内完成：锁定发布行并确认 VISIBLE，读取当前 Reaction，
// 写入/更新/删除 Reaction，并以 rating = rating + delta 更新评分。
//
// 并发的首次 Reaction 会在唯一索引上冲突，此时返回的错误满足 IsUniqueViolation，
// 由调用方重试。
func (r *ReactionRepository) Apply(publicationID uint, userID uint, next *model.ReactionType, delta RatingDeltaFunc) (*ReactionChange, error) {
	var change ReactionChange
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var publication model.Publication
		if err := lockForUpdate(tx).Select("id", "state").First(&publication, publicationID).Error; err != nil {
			return err
		}
		if publication.State != model.PublicationVisible {
			return ErrPublicationNotVisible
		}

		var existing model.Reaction
		err := tx.Where("publication_id = ? AND user_id = ?", publicationID, userID).First(&existing).Error
		switch {
		case err == nil:
			previous := existing.Type
			change.Previous = &previous
		case IsNotFound(err):
		default:
			return err
		}
		change.Current = next
		change.Delta = delta(change.Previous, change.Current)

		switch {
		case change.Previous == nil && next != nil:
			if err := tx.Create(&model.Reaction{
				Type:          *next,
				PublicationID: publicationID,
				UserID:        userID,
			}).Error; err != nil {
				return err
			}
		case change.Previous != nil && next == nil:
			if err := tx.Delete(&model.Reaction{}, existing.ID).Error; err != nil {
				return err
			}
		case change.Previous != nil && *change.Previous != *next:
			if err := tx.Model(&model.Reaction{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
				"type":       *next,
				"created_at": time.Now(),
			}).Error; err != nil {
				return err
			}
		}

		if change.Delta == 0 {
			return nil
		}
		return tx.Model(&model.Publication{}).Where("id = ?", publicationID).
			UpdateColumn("rating", gorm.Expr("rating + ?", change.Delta)).Error
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}

func (r *ReactionRepository) CountByPublication(publicationID uint) (int64, int64, error) {
	type row struct {
		Type  model.ReactionType
		Total int64
	}
	var rows []row
	if err := r.db.Model(&model.Reaction{}).
		Select("type, COUNT(*) AS total").
		Where("publication_id = ?", publicationID).
		Group("type").
		Scan(&rows).Error; err != nil {
		return 0, 0, err
	}
	var likes, dislikes int64
	for _, rw := range rows {
		switch rw.Type {
		case model.ReactionLike:
			likes = rw.Total
		case model.ReactionDislike:
			dislikes = rw.Total
		}
	}
	return likes, dislikes, nil
}

// lockForUpdate 对支持行锁的数据库追加 FOR UPDATE；SQLite 的写事务本身串行。
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
