package tasks

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"woomigrate/pkg/logging"
	"woomigrate/pkg/migration"
	"woomigrate/pkg/models"
	"woomigrate/pkg/repository"
	"woomigrate/pkg/wordpress"
)

// Attributes imports the `pa_` taxonomy terms as product attributes. New
// attributes keep their legacy term id; the position counter restarts for
// every taxonomy so attributes are ordered within their type.
type Attributes struct {
	base
}

func NewAttributes(src *wordpress.Source, reg *repository.Registry, log *logging.Logger, ic migration.ImportContext) *Attributes {
	return &Attributes{base{src: src, reg: reg, log: log, ic: ic}}
}

func (t *Attributes) Name() string { return "woo_attributes" }

func (t *Attributes) After() []string { return []string{"woo_attribute_types"} }

func (t *Attributes) Up(ctx context.Context) error {
	if !t.src.HasTable(ctx, "wp_terms") {
		t.log.Info("legacy schema absent, nothing to do", zap.String("task", t.Name()))
		return nil
	}

	terms, err := t.src.AttributeTerms(ctx)
	if err != nil {
		return err
	}

	return t.reg.Transaction(ctx, func(reg *repository.Registry) error {
		existing, err := reg.Attribute.All(ctx)
		if err != nil {
			return err
		}
		byID := make(map[uint64]models.Attribute, len(existing))
		for _, item := range existing {
			byID[item.ID] = item
		}

		pos := 0
		taxonomy := ""

		for _, row := range terms {
			t.stats.Seen++

			if row.Taxonomy != taxonomy {
				taxonomy = row.Taxonomy
				pos = 0
			}

			item, ok := byID[row.TermID]
			item.Domain = models.DomainProduct
			item.Type = strings.TrimPrefix(row.Taxonomy, "pa_")
			item.Code = row.Slug
			item.Label = row.Name
			item.Position = pos
			pos++

			if ok {
				if err := reg.Attribute.Save(ctx, &item); err != nil {
					return err
				}
				t.stats.Updated++
			} else {
				if err := reg.Attribute.Create(ctx, &item); err != nil {
					return err
				}
				if err := reg.RemapID(ctx, models.Attribute{}, item.ID, row.TermID); err != nil {
					return err
				}
				item.ID = row.TermID
				byID[row.TermID] = item
				t.stats.Created++
			}

			if row.Description != "" {
				err := reg.Text.UpsertFor(ctx, models.DomainAttribute, item.ID,
					models.TextTypeLong, t.ic.LanguageID, textLabel(row.Description, 60), row.Description)
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}
