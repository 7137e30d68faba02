package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"woomigrate/pkg/models"
)

// ListItemRepository manages typed associations between records.
// Matching on the full (parent domain, parent id, domain, type, ref id)
// key is what keeps re-imports from duplicating associations.
type ListItemRepository struct {
	db *gorm.DB
}

// Upsert creates the association or updates the position of the existing one
func (r *ListItemRepository) Upsert(ctx context.Context, item *models.ListItem) error {
	var existing models.ListItem
	err := r.db.WithContext(ctx).
		Where("parent_domain = ? AND parent_id = ? AND domain = ? AND type = ? AND ref_id = ?",
			item.ParentDomain, item.ParentID, item.Domain, item.Type, item.RefID).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(item).Error
	}
	if err != nil {
		return err
	}

	existing.Position = item.Position
	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return err
	}
	item.ID = existing.ID
	return nil
}

// ByParent returns the associations of one parent for a domain and type,
// ordered by position
func (r *ListItemRepository) ByParent(ctx context.Context, parentDomain string, parentID uint64, domain, typ string) ([]models.ListItem, error) {
	var items []models.ListItem
	err := r.db.WithContext(ctx).
		Where("parent_domain = ? AND parent_id = ? AND domain = ? AND type = ?",
			parentDomain, parentID, domain, typ).
		Order("position").
		Find(&items).Error
	return items, err
}

// DeleteStale removes associations of one parent whose referenced id is not
// in keep. Used when a re-import shrinks a generated association set.
func (r *ListItemRepository) DeleteStale(ctx context.Context, parentDomain string, parentID uint64, domain, typ string, keep []uint64) error {
	q := r.db.WithContext(ctx).
		Where("parent_domain = ? AND parent_id = ? AND domain = ? AND type = ?",
			parentDomain, parentID, domain, typ)
	if len(keep) > 0 {
		q = q.Where("ref_id NOT IN ?", keep)
	}
	return q.Delete(&models.ListItem{}).Error
}
