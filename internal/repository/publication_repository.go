package repository

import (
	"picstorm-server/internal/feed"
	"picstorm-server/internal/model"
)

type PublicationStore interface {
	Create(publication *model.Publication) error
	FindByID(id uint) (*model.Publication, error)
	Feed(spec feed.Spec, order []feed.OrderKey, offset int, limit int) ([]model.Publication, error)
	CountByOwner(ownerID uint) (int64, error)
	UpdateState(id uint, state model.PublicationState) error
	DeleteWithPicture(publication *model.Publication) error
}
