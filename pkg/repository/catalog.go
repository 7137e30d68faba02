package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"woomigrate/pkg/models"
)

// CatalogRepository manages the category tree
type CatalogRepository struct {
	db *gorm.DB
}

// All returns every catalog node, ordered by id
func (r *CatalogRepository) All(ctx context.Context) ([]models.Catalog, error) {
	var items []models.Catalog
	err := r.db.WithContext(ctx).Order("id").Find(&items).Error
	return items, err
}

// FindByCode returns the catalog node with the given code, or nil
func (r *CatalogRepository) FindByCode(ctx context.Context, code string) (*models.Catalog, error) {
	var item models.Catalog
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Insert creates a new node under the given parent, assigning its id
func (r *CatalogRepository) Insert(ctx context.Context, item *models.Catalog, parentID uint64) error {
	item.ParentID = parentID
	return r.db.WithContext(ctx).Create(item).Error
}

// Save updates an existing catalog node
func (r *CatalogRepository) Save(ctx context.Context, item *models.Catalog) error {
	return r.db.WithContext(ctx).Save(item).Error
}
