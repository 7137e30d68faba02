package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"woomigrate/pkg/logging"
	"woomigrate/pkg/migration"
	"woomigrate/pkg/models"
	"woomigrate/pkg/options"
	"woomigrate/pkg/repository"
	"woomigrate/pkg/wordpress"
)

var priceValue = regexp.MustCompile(`^[0-9]+\.?[0-9]*$`)

// ExtraOptions imports the per-category option templates. Every radio
// button option of a template becomes an attribute under a generated
// attribute type; the template's conditional logic decides which products
// an option refers to, and the generated attributes are assigned to all
// non-excluded products of the template's category as config options.
type ExtraOptions struct {
	base
}

func NewExtraOptions(src *wordpress.Source, reg *repository.Registry, log *logging.Logger, ic migration.ImportContext) *ExtraOptions {
	return &ExtraOptions{base{src: src, reg: reg, log: log, ic: ic}}
}

func (t *ExtraOptions) Name() string { return "woo_extra_options" }

func (t *ExtraOptions) After() []string {
	return []string{"woo_products", "woo_categories"}
}

func (t *ExtraOptions) Up(ctx context.Context) error {
	if !t.src.HasTable(ctx, "wp_posts") {
		t.log.Info("legacy schema absent, nothing to do", zap.String("task", t.Name()))
		return nil
	}

	rows, err := t.src.ExtraOptionTemplates(ctx)
	if err != nil {
		return err
	}
	taxRate, err := t.src.TaxRate(ctx)
	if err != nil {
		return err
	}

	return t.reg.Transaction(ctx, func(reg *repository.Registry) error {
		existing, err := reg.AttributeType.All(ctx)
		if err != nil {
			return err
		}
		types := make(map[string]models.AttributeType, len(existing))
		for _, item := range existing {
			types[item.Code] = item
		}

		for _, row := range rows {
			t.stats.Seen++

			tpl, err := options.Parse([]byte(row.Template))
			if err != nil {
				t.log.Warn("template cannot be deserialized, skipping",
					zap.Uint64("post", row.ID),
					zap.Uint64("category", row.CatID),
					zap.Error(err))
				continue
			}
			if tpl == nil || !tpl.HasRadioButtons() {
				continue
			}

			typeItem, err := t.upsertType(ctx, reg, types, row.ID, tpl)
			if err != nil {
				return err
			}

			attrIDs, err := t.upsertAttributes(ctx, reg, row.ID, tpl, typeItem.Code, taxRate)
			if err != nil {
				return err
			}

			excluded := make(map[uint64]bool)
			for _, id := range options.IDList(row.Excludes.String) {
				excluded[id] = true
			}
			if err := t.assign(ctx, reg, row.CatID, attrIDs, excluded); err != nil {
				return err
			}
		}
		return nil
	})
}

// upsertType creates or updates the attribute type generated for one
// template, keyed by the slugged internal name plus the template post id.
func (t *ExtraOptions) upsertType(ctx context.Context, reg *repository.Registry, types map[string]models.AttributeType, tid uint64, tpl *options.Template) (models.AttributeType, error) {
	code := fmt.Sprintf("%s_%d", options.Slug(tpl.InternalName), tid)

	name := ""
	if tpl.HeaderTitle != "" {
		name = `<h2 class="section_header_title">` + stripTags(tpl.HeaderTitle) + `</h2>`
	}
	name += tpl.HeaderSubtitle

	i18n, err := json.Marshal(map[string]string{t.ic.LanguageID: name})
	if err != nil {
		return models.AttributeType{}, err
	}

	item, ok := types[code]
	item.Domain = models.DomainProduct
	item.Code = code
	item.Label = tpl.InternalName
	item.Position = tpl.Priority
	item.I18n = string(i18n)

	if ok {
		err = reg.AttributeType.Save(ctx, &item)
	} else {
		err = reg.AttributeType.Create(ctx, &item)
	}
	if err != nil {
		return models.AttributeType{}, err
	}

	types[code] = item
	return item, nil
}

// upsertAttributes creates or updates one attribute per enabled option and
// returns their ids in option order.
func (t *ExtraOptions) upsertAttributes(ctx context.Context, reg *repository.Registry, tid uint64, tpl *options.Template, typeCode, taxRate string) ([]uint64, error) {
	existing, err := reg.Attribute.ByType(ctx, typeCode)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]models.Attribute, len(existing))
	for _, item := range existing {
		byCode[item.Code] = item
	}

	resolver := options.NewResolver(reg.Product, t.log)

	var ids []uint64
	for _, idx := range tpl.SectionIndexes() {
		for _, key := range tpl.OptionKeys(idx) {
			cfg := tpl.Options[idx][key]
			if !cfg.Enabled {
				continue
			}

			code := options.Slug(cfg.Value)
			if code == "" {
				t.log.Warn("option without value, skipping",
					zap.Uint64("template", tid),
					zap.Int("section", idx),
					zap.Int("option", key))
				continue
			}
			code = fmt.Sprintf("%s_%d_%d_%d", code, tid, idx, key)

			item, ok := byCode[code]
			item.Domain = models.DomainProduct
			item.Type = typeCode
			item.Code = code
			item.Label = cfg.Title
			if item.Label == "" {
				item.Label = code
			}
			item.Position = key

			if ok {
				err = reg.Attribute.Save(ctx, &item)
			} else {
				err = reg.Attribute.Create(ctx, &item)
			}
			if err != nil {
				return nil, err
			}
			byCode[code] = item

			if err := t.refItems(ctx, reg, item, cfg, taxRate); err != nil {
				return nil, err
			}
			if err := t.products(ctx, reg, resolver, item.ID, tpl, idx, key); err != nil {
				return nil, err
			}

			ids = append(ids, item.ID)
		}
	}
	return ids, nil
}

// refItems attaches the option's images, description and surcharge price
// to the generated attribute.
func (t *ExtraOptions) refItems(ctx context.Context, reg *repository.Registry, item models.Attribute, cfg options.OptionConfig, taxRate string) error {
	if cfg.Image != "" {
		if err := t.media(ctx, reg, item.ID, "icon", cfg.Image, cfg.Title); err != nil {
			return err
		}
	}
	if cfg.LargeImage != "" {
		if err := t.media(ctx, reg, item.ID, "default", cfg.LargeImage, cfg.Title); err != nil {
			return err
		}
	}

	if cfg.Description != "" {
		err := reg.Text.UpsertFor(ctx, models.DomainAttribute, item.ID,
			models.TextTypeLong, t.ic.LanguageID, textLabel(cfg.Description, 100), cfg.Description)
		if err != nil {
			return err
		}
	}

	if cfg.Price != "" && priceValue.MatchString(cfg.Price) {
		err := reg.Price.UpsertFor(ctx, models.DomainAttribute, item.ID,
			"default", t.ic.CurrencyID, cfg.Price, taxRate)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *ExtraOptions) media(ctx context.Context, reg *repository.Registry, attrID uint64, mediaType, url, label string) error {
	mimeType, ok := options.Mime(url)
	if !ok {
		t.log.Warn("unknown image extension, skipping media", zap.String("url", url))
		return nil
	}
	return reg.Media.UpsertFor(ctx, models.DomainAttribute, attrID, mediaType, url, label, mimeType)
}

// products rewrites the attribute's product associations to the resolver
// result, removing associations from previous runs that no longer apply.
func (t *ExtraOptions) products(ctx context.Context, reg *repository.Registry, resolver *options.Resolver, attrID uint64, tpl *options.Template, idx, key int) error {
	productIDs, err := resolver.Products(ctx, tpl, idx, key)
	if err != nil {
		return err
	}

	keep := make([]uint64, 0, len(productIDs))
	for pos, productID := range productIDs {
		err := reg.ListItem.Upsert(ctx, &models.ListItem{
			ParentDomain: models.DomainAttribute,
			ParentID:     attrID,
			Domain:       models.DomainProduct,
			Type:         models.ListTypeDefault,
			RefID:        productID,
			Position:     pos,
		})
		if err != nil {
			return err
		}
		keep = append(keep, productID)
	}

	return reg.ListItem.DeleteStale(ctx, models.DomainAttribute, attrID,
		models.DomainProduct, models.ListTypeDefault, keep)
}

// assign attaches the generated attributes to every non-excluded product
// of the template's category as selectable config options.
func (t *ExtraOptions) assign(ctx context.Context, reg *repository.Registry, catID uint64, attrIDs []uint64, excluded map[uint64]bool) error {
	productIDs, err := reg.Product.IDsByCategories(ctx, []uint64{catID})
	if err != nil {
		return err
	}

	for _, productID := range productIDs {
		if excluded[productID] {
			continue
		}
		for pos, attrID := range attrIDs {
			err := reg.ListItem.Upsert(ctx, &models.ListItem{
				ParentDomain: models.DomainProduct,
				ParentID:     productID,
				Domain:       models.DomainAttribute,
				Type:         models.ListTypeConfig,
				RefID:        attrID,
				Position:     pos,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
