package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"woomigrate/pkg/models"
)

// The text, media and price repositories attach referenced records to a
// parent via a default list association. One referenced record per
// (parent, type) is kept; re-imports update it in place.

// TextRepository manages text blocks and their parent associations
type TextRepository struct {
	db *gorm.DB
}

// UpsertFor attaches a text block of the given type to the parent record,
// creating or updating both the text and its list association
func (r *TextRepository) UpsertFor(ctx context.Context, parentDomain string, parentID uint64, textType, langID, label, content string) error {
	refIDs, err := refIDsFor(ctx, r.db, parentDomain, parentID, models.DomainText)
	if err != nil {
		return err
	}

	var existing models.Text
	found := false
	if len(refIDs) > 0 {
		err := r.db.WithContext(ctx).Where("id IN ? AND type = ?", refIDs, textType).First(&existing).Error
		if err == nil {
			found = true
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	if found {
		existing.LanguageID = langID
		existing.Label = label
		existing.Content = content
		return r.db.WithContext(ctx).Save(&existing).Error
	}

	item := models.Text{
		Domain:     parentDomain,
		Type:       textType,
		LanguageID: langID,
		Label:      label,
		Content:    content,
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return err
	}

	return attachRef(ctx, r.db, parentDomain, parentID, models.DomainText, item.ID)
}

// MediaRepository manages media records and their parent associations
type MediaRepository struct {
	db *gorm.DB
}

// UpsertFor attaches a media record of the given type to the parent record
func (r *MediaRepository) UpsertFor(ctx context.Context, parentDomain string, parentID uint64, mediaType, url, label, mimeType string) error {
	refIDs, err := refIDsFor(ctx, r.db, parentDomain, parentID, models.DomainMedia)
	if err != nil {
		return err
	}

	var existing models.Media
	found := false
	if len(refIDs) > 0 {
		err := r.db.WithContext(ctx).Where("id IN ? AND type = ?", refIDs, mediaType).First(&existing).Error
		if err == nil {
			found = true
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	if found {
		existing.URL = url
		existing.Label = label
		existing.MimeType = mimeType
		return r.db.WithContext(ctx).Save(&existing).Error
	}

	item := models.Media{
		Domain:   parentDomain,
		Type:     mediaType,
		URL:      url,
		Label:    label,
		MimeType: mimeType,
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return err
	}

	return attachRef(ctx, r.db, parentDomain, parentID, models.DomainMedia, item.ID)
}

// PriceRepository manages price records and their parent associations
type PriceRepository struct {
	db *gorm.DB
}

// UpsertFor attaches a price of the given type to the parent record
func (r *PriceRepository) UpsertFor(ctx context.Context, parentDomain string, parentID uint64, priceType, currencyID, value, taxRate string) error {
	refIDs, err := refIDsFor(ctx, r.db, parentDomain, parentID, models.DomainPrice)
	if err != nil {
		return err
	}

	var existing models.Price
	found := false
	if len(refIDs) > 0 {
		err := r.db.WithContext(ctx).Where("id IN ? AND type = ?", refIDs, priceType).First(&existing).Error
		if err == nil {
			found = true
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	if found {
		existing.CurrencyID = currencyID
		existing.Value = value
		existing.TaxRate = taxRate
		return r.db.WithContext(ctx).Save(&existing).Error
	}

	item := models.Price{
		Domain:     parentDomain,
		Type:       priceType,
		CurrencyID: currencyID,
		Value:      value,
		TaxRate:    taxRate,
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return err
	}

	return attachRef(ctx, r.db, parentDomain, parentID, models.DomainPrice, item.ID)
}

// refIDsFor returns the referenced ids of the parent's default list
// associations in the given domain
func refIDsFor(ctx context.Context, db *gorm.DB, parentDomain string, parentID uint64, domain string) ([]uint64, error) {
	var items []models.ListItem
	err := db.WithContext(ctx).
		Where("parent_domain = ? AND parent_id = ? AND domain = ? AND type = ?",
			parentDomain, parentID, domain, models.ListTypeDefault).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	refIDs := make([]uint64, 0, len(items))
	for _, item := range items {
		refIDs = append(refIDs, item.RefID)
	}
	return refIDs, nil
}

// attachRef creates the default list association pointing at a newly
// created referenced record
func attachRef(ctx context.Context, db *gorm.DB, parentDomain string, parentID uint64, domain string, refID uint64) error {
	item := models.ListItem{
		ParentDomain: parentDomain,
		ParentID:     parentID,
		Domain:       domain,
		Type:         models.ListTypeDefault,
		RefID:        refID,
	}
	return db.WithContext(ctx).Create(&item).Error
}
