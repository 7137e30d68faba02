package repository

import (
	"context"
	"fmt"
)

// tabler is any destination model that knows its table name
type tabler interface {
	TableName() string
}

// RemapID rewrites the primary key of a freshly created row from the
// store-assigned id to the legacy id, so that the legacy numbering stays
// canonical after the import. Must run inside the same transaction as the
// create; a conflict aborts the whole batch (spec: no partial remaps).
func (r *Registry) RemapID(ctx context.Context, model tabler, assignedID, legacyID uint64) error {
	if assignedID == legacyID {
		return nil
	}

	table := model.TableName()

	var count int64
	if err := r.db.WithContext(ctx).Table(table).Where("id = ?", legacyID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %s id %d: %w", table, legacyID, err)
	}
	if count > 0 {
		return fmt.Errorf("%s id %d: %w", table, legacyID, ErrRemapConflict)
	}

	res := r.db.WithContext(ctx).Table(table).Where("id = ?", assignedID).Update("id", legacyID)
	if res.Error != nil {
		return fmt.Errorf("failed to remap %s id %d to %d: %w", table, assignedID, legacyID, res.Error)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("failed to remap %s id %d to %d: row not found", table, assignedID, legacyID)
	}

	return nil
}
