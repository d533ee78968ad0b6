package repository

import (
	"context"

	"food-ordering-api/models"

	"gorm.io/gorm"
)

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) Create(ctx context.Context, m *models.Menu) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *menuRepository) FindByID(ctx context.Context, id string) (*models.Menu, error) {
	var m models.Menu
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *menuRepository) Update(ctx context.Context, m *models.Menu) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *menuRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Menu{}, "id = ?", id).Error
}
