package tasks

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"woomigrate/pkg/logging"
	"woomigrate/pkg/migration"
	"woomigrate/pkg/models"
	"woomigrate/pkg/repository"
	"woomigrate/pkg/wordpress"
)

// Categories imports the product category terms as catalog nodes. The
// source rows arrive ordered by parent so a parent is always imported
// before its children; terms whose parent is unknown go under the root.
type Categories struct {
	base
}

func NewCategories(src *wordpress.Source, reg *repository.Registry, log *logging.Logger, ic migration.ImportContext) *Categories {
	return &Categories{base{src: src, reg: reg, log: log, ic: ic}}
}

func (t *Categories) Name() string { return "woo_categories" }

func (t *Categories) After() []string { return nil }

func (t *Categories) Up(ctx context.Context) error {
	if !t.src.HasTable(ctx, "wp_terms") {
		t.log.Info("legacy schema absent, nothing to do", zap.String("task", t.Name()))
		return nil
	}

	terms, err := t.src.CategoryTerms(ctx)
	if err != nil {
		return err
	}

	return t.reg.Transaction(ctx, func(reg *repository.Registry) error {
		root, err := reg.Catalog.FindByCode(ctx, "home")
		if err != nil {
			return err
		}
		if root == nil {
			return fmt.Errorf("catalog root %q missing, run the schema migration first", "home")
		}

		existing, err := reg.Catalog.All(ctx)
		if err != nil {
			return err
		}
		byID := make(map[uint64]models.Catalog, len(existing))
		for _, item := range existing {
			byID[item.ID] = item
		}

		for _, row := range terms {
			t.stats.Seen++

			item, ok := byID[row.TermID]
			item.Code = row.Slug
			item.Label = row.Name
			item.URL = row.Slug

			if ok {
				if err := reg.Catalog.Save(ctx, &item); err != nil {
					return err
				}
				t.stats.Updated++
			} else {
				parentID := root.ID
				if parent, ok := byID[row.Parent]; ok {
					parentID = parent.ID
				}
				if err := reg.Catalog.Insert(ctx, &item, parentID); err != nil {
					return err
				}
				if err := reg.RemapID(ctx, models.Catalog{}, item.ID, row.TermID); err != nil {
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

func (t *Categories) texts(ctx context.Context, reg *repository.Registry, catalogID uint64, row wordpress.CategoryTerm) error {
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
		err := reg.Text.UpsertFor(ctx, models.DomainCatalog, catalogID,
			kind.typ, t.ic.LanguageID, textLabel(kind.content, 60), kind.content)
		if err != nil {
			return err
		}
	}
	return nil
}
