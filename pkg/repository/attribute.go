package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"woomigrate/pkg/models"
)

// AttributeRepository manages product attribute records
type AttributeRepository struct {
	db *gorm.DB
}

// All returns every attribute, ordered by id
func (r *AttributeRepository) All(ctx context.Context) ([]models.Attribute, error) {
	var items []models.Attribute
	err := r.db.WithContext(ctx).Order("id").Find(&items).Error
	return items, err
}

// ByType returns all attributes of the given type, ordered by position
func (r *AttributeRepository) ByType(ctx context.Context, typeCode string) ([]models.Attribute, error) {
	var items []models.Attribute
	err := r.db.WithContext(ctx).Where("type = ?", typeCode).Order("position").Find(&items).Error
	return items, err
}

// Create inserts a new attribute, assigning its id
func (r *AttributeRepository) Create(ctx context.Context, item *models.Attribute) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Save updates an existing attribute
func (r *AttributeRepository) Save(ctx context.Context, item *models.Attribute) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// AttributeTypeRepository manages attribute type records
type AttributeTypeRepository struct {
	db *gorm.DB
}

// All returns every attribute type, ordered by id
func (r *AttributeTypeRepository) All(ctx context.Context) ([]models.AttributeType, error) {
	var items []models.AttributeType
	err := r.db.WithContext(ctx).Order("id").Find(&items).Error
	return items, err
}

// FindByCode returns the attribute type with the given domain and code,
// or nil when no such type exists
func (r *AttributeTypeRepository) FindByCode(ctx context.Context, domain, code string) (*models.AttributeType, error) {
	var item models.AttributeType
	err := r.db.WithContext(ctx).Where("domain = ? AND code = ?", domain, code).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new attribute type, assigning its id
func (r *AttributeTypeRepository) Create(ctx context.Context, item *models.AttributeType) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Save updates an existing attribute type
func (r *AttributeTypeRepository) Save(ctx context.Context, item *models.AttributeType) error {
	return r.db.WithContext(ctx).Save(item).Error
}
