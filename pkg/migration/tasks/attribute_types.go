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

// AttributeTypes imports the global attribute taxonomy definitions as
// attribute types, matched by code. Types keep their store-assigned ids,
// the legacy schema has no numeric id worth preserving for them.
type AttributeTypes struct {
	base
}

func NewAttributeTypes(src *wordpress.Source, reg *repository.Registry, log *logging.Logger, ic migration.ImportContext) *AttributeTypes {
	return &AttributeTypes{base{src: src, reg: reg, log: log, ic: ic}}
}

func (t *AttributeTypes) Name() string { return "woo_attribute_types" }

func (t *AttributeTypes) After() []string { return nil }

func (t *AttributeTypes) Up(ctx context.Context) error {
	if !t.src.HasTable(ctx, "wp_terms") {
		t.log.Info("legacy schema absent, nothing to do", zap.String("task", t.Name()))
		return nil
	}

	rows, err := t.src.AttributeTaxonomies(ctx)
	if err != nil {
		return err
	}

	return t.reg.Transaction(ctx, func(reg *repository.Registry) error {
		existing, err := reg.AttributeType.All(ctx)
		if err != nil {
			return err
		}
		byCode := make(map[string]models.AttributeType, len(existing))
		for _, item := range existing {
			byCode[item.Code] = item
		}

		for _, row := range rows {
			t.stats.Seen++

			item, ok := byCode[row.Name]
			item.Domain = models.DomainProduct
			item.Code = row.Name
			item.Label = row.Label

			if ok {
				if err := reg.AttributeType.Save(ctx, &item); err != nil {
					return err
				}
				t.stats.Updated++
				continue
			}
			if err := reg.AttributeType.Create(ctx, &item); err != nil {
				return err
			}
			byCode[item.Code] = item
			t.stats.Created++
		}
		return nil
	})
}
