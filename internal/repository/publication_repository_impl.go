package repository

import (
	"picstorm-server/internal/feed"
	"picstorm-server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PublicationRepository struct {
	db *gorm.DB
}

func (r *PublicationRepository) Create(publication *model.Publication) error {
	return r.db.Create(publication).Error
}

// FindByID 预加载发布者
func (r *PublicationRepository) FindByID(id uint) (*model.Publication, error) {
	var publication model.Publication
	if err := r.db.Preload("Owner").First(&publication, id).Error; err != nil {
		return nil, err
	}
	return &publication, nil
}

// Feed 将 feed.Spec 翻译为 SQL 条件并分页查询，结果预加载发布者。
func (r *PublicationRepository) Feed(spec feed.Spec, order []feed.OrderKey, offset int, limit int) ([]model.Publication, error) {
	var publications []model.Publication
	query := r.db.Model(&model.Publication{}).Scopes(feedScope(r.db, spec))
	for _, key := range order {
		query = query.Order(clause.OrderByColumn{
			Column: clause.Column{Table: "publications", Name: key.Column},
			Desc:   key.Desc,
		})
	}
	err := query.Preload("Owner").Offset(offset).Limit(limit).Find(&publications).Error
	return publications, err
}

func feedScope(db *gorm.DB, spec feed.Spec) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		q = q.Where("publications.state = ?", spec.State)
		if spec.CreatedSince != nil {
			q = q.Where("publications.created_at >= ?", *spec.CreatedSince)
		}
		switch spec.Owner.Kind {
		case feed.OwnerIs:
			q = q.Where("publications.owner_id = ?", spec.Owner.UserID)
		case feed.OwnerSubscribedBy:
			targets := db.Model(&model.Subscription{}).
				Select("target_id").
				Where("subscriber_id = ?", spec.Owner.UserID)
			q = q.Where("publications.owner_id IN (?)", targets)
		}
		return q
	}
}

// CountByOwner 统计用户 VISIBLE 发布数量
func (r *PublicationRepository) CountByOwner(ownerID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Publication{}).
		Where("owner_id = ? AND state = ?", ownerID, model.PublicationVisible).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PublicationRepository) UpdateState(id uint, state model.PublicationState) error {
	res := r.db.Model(&model.Publication{}).Where("id = ?", id).Update("state", state)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteWithPicture 删除发布、其 Reaction 以及图片记录。
func (r *PublicationRepository) DeleteWithPicture(publication *model.Publication) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("publication_id = ?", publication.ID).Delete(&model.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Publication{}, publication.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Picture{}, publication.PictureID).Error
	})
}
