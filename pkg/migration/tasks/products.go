package tasks

import (
	"context"

	"go.uber.org/zap"

	"woomigrate/pkg/logging"
	"woomigrate/pkg/migration"
	"woomigrate/pkg/models"
	"woomigrate/pkg/options"
	"woomigrate/pkg/repository"
	"woomigrate/pkg/wordpress"
)

// Products imports products and their variations, then enriches them with
// properties, category and brand associations, variant attributes, images,
// prices and cross-sell suggestions. New products keep their legacy post id
// so the foreign keys in later rows resolve without lookups.
type Products struct {
	base
}

func NewProducts(src *wordpress.Source, reg *repository.Registry, log *logging.Logger, ic migration.ImportContext) *Products {
	return &Products{base{src: src, reg: reg, log: log, ic: ic}}
}

func (t *Products) Name() string { return "woo_products" }

func (t *Products) After() []string {
	return []string{"woo_attributes", "woo_brands", "woo_categories"}
}

func (t *Products) Up(ctx context.Context) error {
	if !t.src.HasTable(ctx, "wp_posts") {
		t.log.Info("legacy schema absent, nothing to do", zap.String("task", t.Name()))
		return nil
	}

	products, err := t.src.Products(ctx)
	if err != nil {
		return err
	}
	variations, err := t.src.Variations(ctx)
	if err != nil {
		return err
	}

	return t.reg.Transaction(ctx, func(reg *repository.Registry) error {
		existing, err := reg.Product.All(ctx)
		if err != nil {
			return err
		}
		index := make(map[uint64]models.Product, len(existing))
		for _, item := range existing {
			index[item.ID] = item
		}

		for _, row := range products {
			if err := t.upsert(ctx, reg, row, index); err != nil {
				return err
			}
		}
		for _, row := range variations {
			if err := t.upsert(ctx, reg, row, index); err != nil {
				return err
			}
		}

		if err := t.properties(ctx, reg, index); err != nil {
			return err
		}
		if err := t.categories(ctx, reg, index); err != nil {
			return err
		}
		if err := t.attributes(ctx, reg, index); err != nil {
			return err
		}
		if err := t.brands(ctx, reg, index); err != nil {
			return err
		}
		if err := t.images(ctx, reg, index); err != nil {
			return err
		}
		if err := t.prices(ctx, reg, index); err != nil {
			return err
		}
		return t.suggests(ctx, reg, index)
	})
}

func (t *Products) upsert(ctx context.Context, reg *repository.Registry, row wordpress.ProductRow, index map[uint64]models.Product) error {
	t.stats.Seen++

	item, ok := index[row.ID]
	item.Code = productCode(row.SKU, row.ID)
	item.Label = row.Title
	item.URL = row.Slug
	item.Type = productType(row.Type)
	item.TimeCreated = parseTime(row.DateGMT)

	if ok {
		if err := reg.Product.Save(ctx, &item); err != nil {
			return err
		}
		index[row.ID] = item
		t.stats.Updated++
	} else {
		if err := reg.Product.Create(ctx, &item); err != nil {
			return err
		}
		if err := reg.RemapID(ctx, models.Product{}, item.ID, row.ID); err != nil {
			return err
		}
		item.ID = row.ID
		index[row.ID] = item
		t.stats.Created++
	}

	long := row.Content
	if long == "" {
		long = row.Excerpt
	}
	if long != "" {
		err := reg.Text.UpsertFor(ctx, models.DomainProduct, item.ID,
			models.TextTypeLong, t.ic.LanguageID, textLabel(long, 60), long)
		if err != nil {
			return err
		}
	}

	if row.StockStatus != "" {
		var level *int64
		if row.StockQuantity.Valid {
			quantity := row.StockQuantity.Int64
			level = &quantity
		}
		if err := reg.Stock.Upsert(ctx, item.ID, "default", level); err != nil {
			return err
		}
	}

	// variation rows link themselves into their parent product
	if row.Parent != 0 {
		if _, ok := index[row.Parent]; ok {
			err := reg.ListItem.Upsert(ctx, &models.ListItem{
				ParentDomain: models.DomainProduct,
				ParentID:     row.Parent,
				Domain:       models.DomainProduct,
				Type:         models.ListTypeDefault,
				RefID:        row.ID,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Products) properties(ctx context.Context, reg *repository.Registry, index map[uint64]models.Product) error {
	rows, err := t.src.ProductProperties(ctx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if _, ok := index[row.PostID]; !ok {
			continue
		}
		// meta keys are _weight, _width, _length, _height
		if err := reg.Property.Upsert(ctx, row.PostID, row.Key[1:], row.Value); err != nil {
			return err
		}
	}
	return nil
}

func (t *Products) categories(ctx context.Context, reg *repository.Registry, index map[uint64]models.Product) error {
	rows, err := t.src.ProductCategories(ctx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if _, ok := index[row.PostID]; !ok {
			continue
		}
		err := reg.ListItem.Upsert(ctx, &models.ListItem{
			ParentDomain: models.DomainProduct,
			ParentID:     row.PostID,
			Domain:       models.DomainCatalog,
			Type:         models.ListTypeDefault,
			RefID:        row.TermID,
			Position:     row.Position,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// attributes links variations to the attribute records imported from the
// `pa_` taxonomies. The meta key carries the attribute type, either with a
// `pa_` prefix for global attributes or bare for local ones; the value is
// the attribute code.
func (t *Products) attributes(ctx context.Context, reg *repository.Registry, index map[uint64]models.Product) error {
	attrs, err := reg.Attribute.All(ctx)
	if err != nil {
		return err
	}
	attrIDs := make(map[string]uint64, len(attrs))
	for _, attr := range attrs {
		attrIDs[attr.Type+"/"+attr.Code] = attr.ID
	}

	rows, err := t.src.VariantAttributes(ctx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if _, ok := index[row.PostID]; !ok {
			continue
		}

		cut := 10
		if len(row.Key) >= 13 && row.Key[10:13] == "pa_" {
			cut = 13
		}
		attrID, ok := attrIDs[row.Key[cut:]+"/"+row.Value]
		if !ok {
			continue
		}

		err := reg.ListItem.Upsert(ctx, &models.ListItem{
			ParentDomain: models.DomainProduct,
			ParentID:     row.PostID,
			Domain:       models.DomainAttribute,
			Type:         models.ListTypeVariant,
			RefID:        attrID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Products) brands(ctx context.Context, reg *repository.Registry, index map[uint64]models.Product) error {
	rows, err := t.src.ProductBrands(ctx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if _, ok := index[row.PostID]; !ok {
			continue
		}
		err := reg.ListItem.Upsert(ctx, &models.ListItem{
			ParentDomain: models.DomainProduct,
			ParentID:     row.PostID,
			Domain:       models.DomainSupplier,
			Type:         models.ListTypeDefault,
			RefID:        row.TermID,
			Position:     row.Position,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Products) images(ctx context.Context, reg *repository.Registry, index map[uint64]models.Product) error {
	rows, err := t.src.ProductImages(ctx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if _, ok := index[row.PostID]; !ok {
			continue
		}
		mimeType, _ := options.Mime(row.File)
		err := reg.Media.UpsertFor(ctx, models.DomainProduct, row.PostID,
			"default", row.File, row.Title, mimeType)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Products) prices(ctx context.Context, reg *repository.Registry, index map[uint64]models.Product) error {
	taxRate, err := t.src.TaxRate(ctx)
	if err != nil {
		return err
	}

	regular, err := t.src.RegularPrices(ctx)
	if err != nil {
		return err
	}
	for _, row := range regular {
		if _, ok := index[row.PostID]; !ok {
			continue
		}
		err := reg.Price.UpsertFor(ctx, models.DomainProduct, row.PostID,
			"default", t.ic.CurrencyID, row.Value, taxRate)
		if err != nil {
			return err
		}
	}

	sale, err := t.src.SalePrices(ctx)
	if err != nil {
		return err
	}
	for _, row := range sale {
		if _, ok := index[row.PostID]; !ok || row.Value == "" {
			continue
		}
		err := reg.Price.UpsertFor(ctx, models.DomainProduct, row.PostID,
			"sale", t.ic.CurrencyID, row.Value, taxRate)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Products) suggests(ctx context.Context, reg *repository.Registry, index map[uint64]models.Product) error {
	rows, err := t.src.CrossSells(ctx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if _, ok := index[row.PostID]; !ok {
			continue
		}
		for _, refID := range options.IDList(row.Value) {
			err := reg.ListItem.Upsert(ctx, &models.ListItem{
				ParentDomain: models.DomainProduct,
				ParentID:     row.PostID,
				Domain:       models.DomainProduct,
				Type:         models.ListTypeSuggest,
				RefID:        refID,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
