package repository

import (
	"context"
	"sort"
	"strconv"

	"gorm.io/gorm"

	"woomigrate/pkg/models"
)

// Sort modes for SortedByCategories, matching the legacy template values.
const (
	SortByID        = "ID"
	SortByBasePrice = "baseprice"
)

// ProductRepository manages product records
type ProductRepository struct {
	db *gorm.DB
}

// All returns every product, ordered by id
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	err := r.db.WithContext(ctx).Order("id").Find(&items).Error
	return items, err
}

// Create inserts a new product, assigning its id
func (r *ProductRepository) Create(ctx context.Context, item *models.Product) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Save updates an existing product
func (r *ProductRepository) Save(ctx context.Context, item *models.Product) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// IDsByCategories returns the distinct ids of products associated with any
// of the given catalog nodes, ordered by product id ascending
func (r *ProductRepository) IDsByCategories(ctx context.Context, catIDs []uint64) ([]uint64, error) {
	if len(catIDs) == 0 {
		return nil, nil
	}

	var items []models.ListItem
	err := r.db.WithContext(ctx).
		Where("parent_domain = ? AND domain = ? AND type = ? AND ref_id IN ?",
			models.DomainProduct, models.DomainCatalog, models.ListTypeDefault, catIDs).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{}, len(items))
	ids := make([]uint64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ParentID]; ok {
			continue
		}
		seen[item.ParentID] = struct{}{}
		ids = append(ids, item.ParentID)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// SortedByCategories returns the product ids for the given catalog nodes,
// sorted by id or by the minimum default price, ascending or descending.
// Products without a default price sort as zero.
func (r *ProductRepository) SortedByCategories(ctx context.Context, catIDs []uint64, sortBy, dir string) ([]uint64, error) {
	ids, err := r.IDsByCategories(ctx, catIDs)
	if err != nil || len(ids) == 0 {
		return ids, err
	}

	if sortBy == SortByBasePrice {
		prices, err := r.minPrices(ctx, ids)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(ids, func(i, j int) bool {
			pi, pj := prices[ids[i]], prices[ids[j]]
			if pi != pj {
				return pi < pj
			}
			return ids[i] < ids[j]
		})
	}

	if dir == "desc" {
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
	}

	return ids, nil
}

// minPrices returns the lowest default price value per product id
func (r *ProductRepository) minPrices(ctx context.Context, ids []uint64) (map[uint64]float64, error) {
	var items []models.ListItem
	err := r.db.WithContext(ctx).
		Where("parent_domain = ? AND parent_id IN ? AND domain = ? AND type = ?",
			models.DomainProduct, ids, models.DomainPrice, models.ListTypeDefault).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	refToProduct := make(map[uint64]uint64, len(items))
	refIDs := make([]uint64, 0, len(items))
	for _, item := range items {
		refToProduct[item.RefID] = item.ParentID
		refIDs = append(refIDs, item.RefID)
	}

	result := make(map[uint64]float64, len(ids))
	if len(refIDs) == 0 {
		return result, nil
	}

	var prices []models.Price
	err = r.db.WithContext(ctx).
		Where("id IN ? AND type = ?", refIDs, models.ListTypeDefault).
		Find(&prices).Error
	if err != nil {
		return nil, err
	}

	for _, price := range prices {
		productID, ok := refToProduct[price.ID]
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(price.Value, 64)
		if err != nil {
			continue
		}
		if current, ok := result[productID]; !ok || value < current {
			result[productID] = value
		}
	}

	return result, nil
}
