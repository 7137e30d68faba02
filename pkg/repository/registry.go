// Package repository provides the data access layer for the destination
// shop schema. All repositories operate on the same *gorm.DB handle so a
// task can run every write of one batch inside a single transaction.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"woomigrate/pkg/models"
)

// ErrRemapConflict is returned when a legacy id is already occupied by an
// existing destination row. Fatal for the running task transaction.
var ErrRemapConflict = errors.New("legacy id already occupied in destination")

// errDryRun forces a rollback of an otherwise successful dry-run transaction.
var errDryRun = errors.New("dry run rollback")

// Registry provides centralized access to all repositories
type Registry struct {
	Attribute     *AttributeRepository
	AttributeType *AttributeTypeRepository
	Product       *ProductRepository
	Catalog       *CatalogRepository
	Supplier      *SupplierRepository
	Stock         *StockRepository
	Property      *PropertyRepository
	ListItem      *ListItemRepository
	Text          *TextRepository
	Media         *MediaRepository
	Price         *PriceRepository

	db     *gorm.DB
	dryRun bool
}

// NewRegistry creates a new repository registry on top of the given handle
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{
		Attribute:     &AttributeRepository{db: db},
		AttributeType: &AttributeTypeRepository{db: db},
		Product:       &ProductRepository{db: db},
		Catalog:       &CatalogRepository{db: db},
		Supplier:      &SupplierRepository{db: db},
		Stock:         &StockRepository{db: db},
		Property:      &PropertyRepository{db: db},
		ListItem:      &ListItemRepository{db: db},
		Text:          &TextRepository{db: db},
		Media:         &MediaRepository{db: db},
		Price:         &PriceRepository{db: db},
		db:            db,
	}
}

// SetDryRun makes every Transaction roll back instead of committing
func (r *Registry) SetDryRun(dryRun bool) {
	r.dryRun = dryRun
}

// DB returns the underlying database handle
func (r *Registry) DB() *gorm.DB {
	return r.db
}

// Migrate creates the destination schema and seeds the catalog root node.
// The root must exist before categories are imported underneath it.
func (r *Registry) Migrate() error {
	if err := r.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate destination schema: %w", err)
	}

	var count int64
	if err := r.db.Model(&models.Catalog{}).Where("code = ?", "home").Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up catalog root: %w", err)
	}
	if count == 0 {
		root := &models.Catalog{Code: "home", Label: "Home", URL: "home"}
		if err := r.db.Create(root).Error; err != nil {
			return fmt.Errorf("failed to seed catalog root: %w", err)
		}
	}

	return nil
}

// Transaction runs fn against a transactional registry. Everything fn
// writes is committed together or not at all; in dry-run mode the
// transaction is rolled back after fn succeeds.
func (r *Registry) Transaction(ctx context.Context, fn func(*Registry) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(NewRegistry(tx)); err != nil {
			return err
		}
		if r.dryRun {
			return errDryRun
		}
		return nil
	})
	if errors.Is(err, errDryRun) {
		return nil
	}
	return err
}

// Close closes the underlying database connection
func (r *Registry) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
