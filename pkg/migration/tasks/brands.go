package tasks

import (
	"context"

	"go.uber.org/zap"

	"woomigrate/pkg/logging"
	"woomigrate/pkg/migration"
	"woomigrate/pkg/models"
	"woomigrate/pkg/repository"
	"woomigrate/pkg/wordpress"
)

// Brands imports the brand taxonomy terms as suppliers, including the
// description and SEO meta texts. New suppliers keep their legacy term id.
type Brands struct {
	base
}

func NewBrands(src *wordpress.Source, reg *repository.Registry, log *logging.Logger, ic migration.ImportContext) *Brands {
	return &Brands{base{src: src, reg: reg, log: log, ic: ic}}
}

func (t *Brands) Name() string { return "woo_brands" }

func (t *Brands) After() []string { return nil }

func (t *Brands) Up(ctx context.Context) error {
	if !t.src.HasTable(ctx, "wp_terms") {
		t.log.Info("legacy schema absent, nothing to do", zap.String("task", t.Name()))
		return nil
	}

	terms, err := t.src.BrandTerms(ctx)
	if err != nil {
		return err
	}

	return t.reg.Transaction(ctx, func(reg *repository.Registry) error {
		existing, err := reg.Supplier.All(ctx)
		if err != nil {
			return err
		}
		byID := make(map[uint64]models.Supplier, len(existing))
		for _, item := range existing {
			byID[item.ID] = item
		}

		for _, row := range terms {
			t.stats.Seen++

			item, ok := byID[row.TermID]
			item.Code = row.Slug
			item.Label = row.Name

			if ok {
				if err := reg.Supplier.Save(ctx, &item); err != nil {
					return err
				}
				t.stats.Updated++
			} else {
				if err := reg.Supplier.Create(ctx, &item); err != nil {
					return err
				}
				if err := reg.RemapID(ctx, models.Supplier{}, item.ID, row.TermID); err != nil {
					return err
				}
				item.ID = row.TermID
				byID[row.TermID] = item
				t.stats.Created++
			}

			if err := t.texts(ctx, reg, item.ID, row); err != nil {
				return err
			}
		}
		return nil
	})
}

func (t *Brands) texts(ctx context.Context, reg *repository.Registry, supplierID uint64, row wordpress.BrandTerm) error {
	kinds := []struct {
		typ     string
		content string
	}{
		{models.TextTypeLong, row.Description},
		{models.TextTypeMetaTitle, row.MetaTitle.String},
		{models.TextTypeMetaDesc, row.MetaDesc.String},
	}

	for _, kind := range kinds {
		if kind.content == "" {
			continue
		}
		err := reg.Text.UpsertFor(ctx, models.DomainSupplier, supplierID,
			kind.typ, t.ic.LanguageID, textLabel(kind.content, 60), kind.content)
		if err != nil {
			return err
		}
	}
	return nil
}
