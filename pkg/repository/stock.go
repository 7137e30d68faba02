package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"woomigrate/pkg/models"
)

// StockRepository manages stock levels, one row per (product, type)
type StockRepository struct {
	db *gorm.DB
}

// Upsert creates or updates the stock level of a product
func (r *StockRepository) Upsert(ctx context.Context, productID uint64, typ string, level *int64) error {
	var item models.Stock
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND type = ?", productID, typ).
		First(&item).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = models.Stock{ProductID: productID, Type: typ, StockLevel: level}
		return r.db.WithContext(ctx).Create(&item).Error
	}
	if err != nil {
		return err
	}

	item.StockLevel = level
	return r.db.WithContext(ctx).Save(&item).Error
}

// PropertyRepository manages scalar product properties
type PropertyRepository struct {
	db *gorm.DB
}

// Upsert creates or updates a product property of the given type
func (r *PropertyRepository) Upsert(ctx context.Context, productID uint64, typ, value string) error {
	var item models.ProductProperty
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND type = ?", productID, typ).
		First(&item).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = models.ProductProperty{ProductID: productID, Type: typ, Value: value}
		return r.db.WithContext(ctx).Create(&item).Error
	}
	if err != nil {
		return err
	}

	item.Value = value
	return r.db.WithContext(ctx).Save(&item).Error
}

// ByProduct returns all properties of one product
func (r *PropertyRepository) ByProduct(ctx context.Context, productID uint64) ([]models.ProductProperty, error) {
	var items []models.ProductProperty
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("type").Find(&items).Error
	return items, err
}
