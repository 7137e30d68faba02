package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"woomigrate/pkg/models"
)

// setupRegistry creates a registry over an in-memory SQLite database
func setupRegistry(t *testing.T) *Registry {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	reg := NewRegistry(db)
	if err := reg.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return reg
}

func TestMigrate_SeedsCatalogRoot(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	root, err := reg.Catalog.FindByCode(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, uint64(0), root.ParentID)

	// Migrate must be idempotent and keep a single root
	require.NoError(t, reg.Migrate())
	nodes, err := reg.Catalog.All(ctx)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestRemapID_PreservesLegacyID(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	err := reg.Transaction(ctx, func(r *Registry) error {
		item := &models.Product{Code: "chair", Label: "Chair"}
		if err := r.Product.Create(ctx, item); err != nil {
			return err
		}
		if err := r.RemapID(ctx, item, item.ID, 4711); err != nil {
			return err
		}
		item.ID = 4711
		return nil
	})
	require.NoError(t, err)

	products, err := reg.Product.All(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, uint64(4711), products[0].ID)
	assert.Equal(t, "chair", products[0].Code)
}

func TestRemapID_SameIDIsNoop(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	item := &models.Product{Code: "table"}
	require.NoError(t, reg.Product.Create(context.Background(), item))
	require.NoError(t, reg.RemapID(ctx, item, item.ID, item.ID))
}

func TestRemapID_ConflictRollsBackBatch(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	// Occupy legacy id 20 up front
	occupied := &models.Product{Code: "existing"}
	require.NoError(t, reg.Product.Create(ctx, occupied))
	require.NoError(t, reg.RemapID(ctx, occupied, occupied.ID, 20))

	// Three creates in one batch; the second remap collides with id 20.
	// None of the three may survive.
	err := reg.Transaction(ctx, func(r *Registry) error {
		for i, legacyID := range []uint64{10, 20, 30} {
			item := &models.Product{Code: string(rune('a' + i))}
			if err := r.Product.Create(ctx, item); err != nil {
				return err
			}
			if err := r.RemapID(ctx, item, item.ID, legacyID); err != nil {
				return err
			}
			item.ID = legacyID
		}
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemapConflict))

	products, err := reg.Product.All(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "existing", products[0].Code)
}

func TestTransaction_DryRunRollsBack(t *testing.T) {
	reg := setupRegistry(t)
	reg.SetDryRun(true)
	ctx := context.Background()

	err := reg.Transaction(ctx, func(r *Registry) error {
		return r.Product.Create(ctx, &models.Product{Code: "ghost"})
	})
	require.NoError(t, err)

	products, err := reg.Product.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestListItemUpsert_NoDuplicates(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	item := models.ListItem{
		ParentDomain: models.DomainProduct,
		ParentID:     1,
		Domain:       models.DomainAttribute,
		Type:         models.ListTypeVariant,
		RefID:        7,
		Position:     2,
	}
	require.NoError(t, reg.ListItem.Upsert(ctx, &item))

	// Same key again with a new position updates in place
	again := item
	again.ID = 0
	again.Position = 5
	require.NoError(t, reg.ListItem.Upsert(ctx, &again))

	items, err := reg.ListItem.ByParent(ctx, models.DomainProduct, 1, models.DomainAttribute, models.ListTypeVariant)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Position)
	assert.Equal(t, item.ID, again.ID)
}

func TestListItemDeleteStale(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	for i, refID := range []uint64{11, 12, 13} {
		require.NoError(t, reg.ListItem.Upsert(ctx, &models.ListItem{
			ParentDomain: models.DomainAttribute,
			ParentID:     1,
			Domain:       models.DomainProduct,
			Type:         models.ListTypeDefault,
			RefID:        refID,
			Position:     i,
		}))
	}

	require.NoError(t, reg.ListItem.DeleteStale(ctx, models.DomainAttribute, 1,
		models.DomainProduct, models.ListTypeDefault, []uint64{12}))

	items, err := reg.ListItem.ByParent(ctx, models.DomainAttribute, 1, models.DomainProduct, models.ListTypeDefault)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint64(12), items[0].RefID)
}

func TestTextUpsertFor_UpdatesInPlace(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Text.UpsertFor(ctx, models.DomainProduct, 1, models.TextTypeLong, "en", "first", "first content"))
	require.NoError(t, reg.Text.UpsertFor(ctx, models.DomainProduct, 1, models.TextTypeLong, "en", "second", "second content"))
	// A different text type gets its own record
	require.NoError(t, reg.Text.UpsertFor(ctx, models.DomainProduct, 1, models.TextTypeMetaTitle, "en", "meta", "meta content"))

	var texts []models.Text
	require.NoError(t, reg.DB().Order("id").Find(&texts).Error)
	require.Len(t, texts, 2)
	assert.Equal(t, "second content", texts[0].Content)
	assert.Equal(t, models.TextTypeMetaTitle, texts[1].Type)

	items, err := reg.ListItem.ByParent(ctx, models.DomainProduct, 1, models.DomainText, models.ListTypeDefault)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSortedByCategories_BasePrice(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	// Two products in categories 10 and 20, P1 costs 5, P2 costs 3
	p1 := &models.Product{Code: "p1"}
	p2 := &models.Product{Code: "p2"}
	require.NoError(t, reg.Product.Create(ctx, p1))
	require.NoError(t, reg.Product.Create(ctx, p2))

	require.NoError(t, reg.ListItem.Upsert(ctx, &models.ListItem{
		ParentDomain: models.DomainProduct, ParentID: p1.ID,
		Domain: models.DomainCatalog, Type: models.ListTypeDefault, RefID: 10,
	}))
	require.NoError(t, reg.ListItem.Upsert(ctx, &models.ListItem{
		ParentDomain: models.DomainProduct, ParentID: p2.ID,
		Domain: models.DomainCatalog, Type: models.ListTypeDefault, RefID: 20,
	}))

	require.NoError(t, reg.Price.UpsertFor(ctx, models.DomainProduct, p1.ID, models.ListTypeDefault, "EUR", "5", "19.00"))
	require.NoError(t, reg.Price.UpsertFor(ctx, models.DomainProduct, p2.ID, models.ListTypeDefault, "EUR", "3", "19.00"))

	ids, err := reg.Product.SortedByCategories(ctx, []uint64{10, 20}, SortByBasePrice, "asc")
	require.NoError(t, err)
	assert.Equal(t, []uint64{p2.ID, p1.ID}, ids)

	ids, err = reg.Product.SortedByCategories(ctx, []uint64{10, 20}, SortByBasePrice, "desc")
	require.NoError(t, err)
	assert.Equal(t, []uint64{p1.ID, p2.ID}, ids)

	// Default sort is by product id ascending
	ids, err = reg.Product.SortedByCategories(ctx, []uint64{10, 20}, SortByID, "asc")
	require.NoError(t, err)
	assert.Equal(t, []uint64{p1.ID, p2.ID}, ids)
}

func TestSortedByCategories_ProductInBothCategoriesOnce(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	p := &models.Product{Code: "both"}
	require.NoError(t, reg.Product.Create(ctx, p))
	for _, catID := range []uint64{10, 20} {
		require.NoError(t, reg.ListItem.Upsert(ctx, &models.ListItem{
			ParentDomain: models.DomainProduct, ParentID: p.ID,
			Domain: models.DomainCatalog, Type: models.ListTypeDefault, RefID: catID,
		}))
	}

	ids, err := reg.Product.SortedByCategories(ctx, []uint64{10, 20}, SortByID, "asc")
	require.NoError(t, err)
	assert.Equal(t, []uint64{p.ID}, ids)
}
