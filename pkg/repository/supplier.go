package repository

import (
	"context"

	"gorm.io/gorm"

	"woomigrate/pkg/models"
)

// SupplierRepository manages supplier (brand) records
type SupplierRepository struct {
	db *gorm.DB
}

// All returns every supplier, ordered by id
func (r *SupplierRepository) All(ctx context.Context) ([]models.Supplier, error) {
	var items []models.Supplier
	err := r.db.WithContext(ctx).Order("id").Find(&items).Error
	return items, err
}

// Create inserts a new supplier, assigning its id
func (r *SupplierRepository) Create(ctx context.Context, item *models.Supplier) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Save updates an existing supplier
func (r *SupplierRepository) Save(ctx context.Context, item *models.Supplier) error {
	return r.db.WithContext(ctx).Save(item).Error
}
