package repository

import (
	"picstorm-server/internal/model"

	"gorm.io/gorm"
)

type PictureStore interface {
	Create(picture *model.Picture) error
	FindByID(id uint) (*model.Picture, error)
	Delete(id uint) error
}

type PictureRepository struct {
	db *gorm.DB
}

func (r *PictureRepository) Create(picture *model.Picture) error {
	return r.db.Create(picture).Error
}

func (r *PictureRepository) FindByID(id uint) (*model.Picture, error) {
	var picture model.Picture
	if err := r.db.First(&picture, id).Error; err != nil {
		return nil, err
	}
	return &picture, nil
}

func (r *PictureRepository) Delete(id uint) error {
	return r.db.Delete(&model.Picture{}, id).Error
}
