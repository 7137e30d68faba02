package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"woomigrate/pkg/logging"
	"woomigrate/pkg/models"
	"woomigrate/pkg/repository"
)

// optionTemplate serializes a template with one radio button section:
// Chrome (enabled, full config), Matte (disabled) and Brushed (enabled,
// bare). The conditional logic attaches products 100 and 101 to Chrome.
func optionTemplate() string {
	secLogic := `{"section":"S1"}`
	prodLogic := `{"element":"E1","rules":[{"section":"S1","element":"0","operator":"is","value":"Chrome"}]}`

	builder := phpArr(
		phpPair{phpStr("element_type"), phpArr(phpPair{phpInt(0), phpStr("radiobuttons")})},
		phpPair{phpStr("sections_internal_name"), phpArr(phpPair{phpInt(0), phpStr("My Template")})},
		phpPair{phpStr("section_header_title"), phpArr(phpPair{phpInt(0), phpStr("<em>Finish</em>")})},
		phpPair{phpStr("section_header_subtitle"), phpArr(phpPair{phpInt(0), phpStr("Choose one")})},
		phpPair{phpStr("sections_clogic"), phpArr(phpPair{phpInt(0), phpStr(secLogic)})},
		phpPair{phpStr("product_uniqid"), phpArr(phpPair{phpInt(0), phpStr("E1")})},
		phpPair{phpStr("product_clogic"), phpArr(phpPair{phpInt(0), phpStr(prodLogic)})},
		phpPair{phpStr("product_enabled"), phpArr(phpPair{phpInt(0), phpStr("1")})},
		phpPair{phpStr("product_mode"), phpArr(phpPair{phpInt(0), phpStr("products")})},
		phpPair{phpStr("product_productids"), phpArr(
			phpPair{phpInt(0), phpArr(
				phpPair{phpInt(0), phpStr("100")},
				phpPair{phpInt(1), phpStr("101")},
			)},
		)},
		phpPair{phpStr("multiple_radiobuttons_options_enabled"), phpArr(
			phpPair{phpInt(0), phpArr(
				phpPair{phpInt(0), phpStr("1")},
				phpPair{phpInt(1), phpStr("")},
				phpPair{phpInt(2), phpStr("1")},
			)},
		)},
		phpPair{phpStr("multiple_radiobuttons_options_value"), phpArr(
			phpPair{phpInt(0), phpArr(
				phpPair{phpInt(0), phpStr("Chrome")},
				phpPair{phpInt(1), phpStr("Matte")},
				phpPair{phpInt(2), phpStr("Brushed")},
			)},
		)},
		phpPair{phpStr("multiple_radiobuttons_options_title"), phpArr(
			phpPair{phpInt(0), phpArr(
				phpPair{phpInt(0), phpStr("Chrome finish")},
			)},
		)},
		phpPair{phpStr("multiple_radiobuttons_options_price"), phpArr(
			phpPair{phpInt(0), phpArr(
				phpPair{phpInt(0), phpStr("5.00")},
			)},
		)},
		phpPair{phpStr("multiple_radiobuttons_options_image"), phpArr(
			phpPair{phpInt(0), phpArr(
				phpPair{phpInt(0), phpStr("uploads/chrome.png")},
			)},
		)},
		phpPair{phpStr("multiple_radiobuttons_options_description"), phpArr(
			phpPair{phpInt(0), phpArr(
				phpPair{phpInt(0), phpStr("Shiny finish")},
			)},
		)},
	)

	return phpArr(
		phpPair{phpStr("tmfbuilder"), builder},
		phpPair{phpStr("priority"), phpInt(3)},
	)
}

func seedOptionFixtures(t *testing.T, db *sql.DB, reg *repository.Registry) {
	term(t, db, 10, "Bathroom", "bathroom", "product_cat", "", 0)

	exec(t, db, `INSERT INTO wp_posts (ID, post_type) VALUES (900, 'tm_global_cp')`)
	exec(t, db, `INSERT INTO wp_term_relationships VALUES (900, 10, 0)`)
	exec(t, db, `INSERT INTO wp_postmeta VALUES (900, 'tm_meta', ?)`, optionTemplate())

	exec(t, db, `INSERT INTO wp_postmeta VALUES (900, 'tm_meta_product_exclude_ids', 'a:1:{i:0;i:102;}')`)
	exec(t, db, `INSERT INTO wp_woocommerce_tax_rates VALUES ('19.00')`)

	ctx := context.Background()
	for _, id := range []uint64{100, 101, 102} {
		product := models.Product{ID: id, Code: fmt.Sprintf("prod-%d", id)}
		require.NoError(t, reg.DB().Create(&product).Error)
		require.NoError(t, reg.ListItem.Upsert(ctx, &models.ListItem{
			ParentDomain: models.DomainProduct,
			ParentID:     id,
			Domain:       models.DomainCatalog,
			Type:         models.ListTypeDefault,
			RefID:        10,
		}))
	}
}

func TestExtraOptions_FullImport(t *testing.T) {
	src, db := setupSource(t)
	reg := setupRegistry(t)
	ctx := context.Background()

	seedOptionFixtures(t, db, reg)

	task := NewExtraOptions(src, reg, logging.NewNop(), importCtx())
	require.NoError(t, task.Up(ctx))
	assert.Equal(t, 1, task.Stats().Seen)

	// one attribute type per template, code from the internal name
	typeItem, err := reg.AttributeType.FindByCode(ctx, models.DomainProduct, "my-template_900")
	require.NoError(t, err)
	require.NotNil(t, typeItem)
	assert.Equal(t, "My Template", typeItem.Label)
	assert.Equal(t, 3, typeItem.Position)

	var i18n map[string]string
	require.NoError(t, json.Unmarshal([]byte(typeItem.I18n), &i18n))
	assert.Equal(t, `<h2 class="section_header_title">Finish</h2>Choose one`, i18n["en"])

	attrs, err := reg.Attribute.ByType(ctx, "my-template_900")
	require.NoError(t, err)
	require.Len(t, attrs, 2) // Matte is disabled

	byCode := map[string]models.Attribute{}
	for _, attr := range attrs {
		byCode[attr.Code] = attr
	}
	chrome, ok := byCode["chrome_900_0_0"]
	require.True(t, ok)
	assert.Equal(t, "Chrome finish", chrome.Label)
	assert.Equal(t, 0, chrome.Position)

	brushed, ok := byCode["brushed_900_0_2"]
	require.True(t, ok)
	assert.Equal(t, "brushed_900_0_2", brushed.Label) // no title, code as label
	assert.Equal(t, 2, brushed.Position)

	// icon media with mapped mime type
	media := listItems(t, reg, models.DomainAttribute, chrome.ID, models.DomainMedia, models.ListTypeDefault)
	require.Len(t, media, 1)
	var image models.Media
	require.NoError(t, reg.DB().First(&image, media[0].RefID).Error)
	assert.Equal(t, "icon", image.Type)
	assert.Equal(t, "uploads/chrome.png", image.URL)
	assert.Equal(t, "image/png", image.MimeType)

	texts := listItems(t, reg, models.DomainAttribute, chrome.ID, models.DomainText, models.ListTypeDefault)
	require.Len(t, texts, 1)

	prices := listItems(t, reg, models.DomainAttribute, chrome.ID, models.DomainPrice, models.ListTypeDefault)
	require.Len(t, prices, 1)
	var price models.Price
	require.NoError(t, reg.DB().First(&price, prices[0].RefID).Error)
	assert.Equal(t, "5.00", price.Value)
	assert.Equal(t, "19.00", price.TaxRate)
	assert.Equal(t, "EUR", price.CurrencyID)

	// logic attaches products 100 and 101 to Chrome in order
	products := listItems(t, reg, models.DomainAttribute, chrome.ID, models.DomainProduct, models.ListTypeDefault)
	require.Len(t, products, 2)
	assert.Equal(t, uint64(100), products[0].RefID)
	assert.Equal(t, 0, products[0].Position)
	assert.Equal(t, uint64(101), products[1].RefID)
	assert.Equal(t, 1, products[1].Position)

	// Brushed matches no logic entry
	assert.Empty(t, listItems(t, reg, models.DomainAttribute, brushed.ID, models.DomainProduct, models.ListTypeDefault))

	// both attributes assigned to the category's products, excluded one skipped
	config := listItems(t, reg, models.DomainProduct, 100, models.DomainAttribute, models.ListTypeConfig)
	require.Len(t, config, 2)
	assert.Equal(t, chrome.ID, config[0].RefID)
	assert.Equal(t, 0, config[0].Position)
	assert.Equal(t, brushed.ID, config[1].RefID)
	assert.Equal(t, 1, config[1].Position)

	assert.Len(t, listItems(t, reg, models.DomainProduct, 101, models.DomainAttribute, models.ListTypeConfig), 2)
	assert.Empty(t, listItems(t, reg, models.DomainProduct, 102, models.DomainAttribute, models.ListTypeConfig))
}

func TestExtraOptions_RerunAndStaleRemoval(t *testing.T) {
	src, db := setupSource(t)
	reg := setupRegistry(t)
	ctx := context.Background()

	seedOptionFixtures(t, db, reg)

	first := NewExtraOptions(src, reg, logging.NewNop(), importCtx())
	require.NoError(t, first.Up(ctx))

	attrs, err := reg.Attribute.ByType(ctx, "my-template_900")
	require.NoError(t, err)
	require.Len(t, attrs, 2)

	var chrome models.Attribute
	require.NoError(t, reg.DB().Where("code = ?", "chrome_900_0_0").First(&chrome).Error)

	// a product association from an earlier template version
	require.NoError(t, reg.ListItem.Upsert(ctx, &models.ListItem{
		ParentDomain: models.DomainAttribute,
		ParentID:     chrome.ID,
		Domain:       models.DomainProduct,
		Type:         models.ListTypeDefault,
		RefID:        999,
	}))

	second := NewExtraOptions(src, reg, logging.NewNop(), importCtx())
	require.NoError(t, second.Up(ctx))

	attrs, err = reg.Attribute.ByType(ctx, "my-template_900")
	require.NoError(t, err)
	assert.Len(t, attrs, 2)

	var types int64
	require.NoError(t, reg.DB().Model(&models.AttributeType{}).Count(&types).Error)
	assert.Equal(t, int64(1), types)

	// the stale association is gone, the resolved ones stay
	products := listItems(t, reg, models.DomainAttribute, chrome.ID, models.DomainProduct, models.ListTypeDefault)
	require.Len(t, products, 2)
	for _, item := range products {
		assert.NotEqual(t, uint64(999), item.RefID)
	}

	config := listItems(t, reg, models.DomainProduct, 100, models.DomainAttribute, models.ListTypeConfig)
	assert.Len(t, config, 2)
}

func TestExtraOptions_DisabledAndCorruptSkipped(t *testing.T) {
	src, db := setupSource(t)
	reg := setupRegistry(t)
	ctx := context.Background()

	term(t, db, 10, "Bathroom", "bathroom", "product_cat", "", 0)

	// disabled for category use, filtered out by the source query
	exec(t, db, `INSERT INTO wp_posts (ID, post_type) VALUES (901, 'tm_global_cp')`)
	exec(t, db, `INSERT INTO wp_term_relationships VALUES (901, 10, 0)`)
	exec(t, db, `INSERT INTO wp_postmeta VALUES (901, 'tm_meta', 'a:0:{}')`)
	exec(t, db, `INSERT INTO wp_postmeta VALUES (901, 'tm_meta_disable_categories', '1')`)

	// corrupt blob, logged and skipped
	exec(t, db, `INSERT INTO wp_posts (ID, post_type) VALUES (902, 'tm_global_cp')`)
	exec(t, db, `INSERT INTO wp_term_relationships VALUES (902, 10, 0)`)
	exec(t, db, `INSERT INTO wp_postmeta VALUES (902, 'tm_meta', 'a:1:{garbage')`)

	task := NewExtraOptions(src, reg, logging.NewNop(), importCtx())
	require.NoError(t, task.Up(ctx))
	assert.Equal(t, 1, task.Stats().Seen)

	var types int64
	require.NoError(t, reg.DB().Model(&models.AttributeType{}).Count(&types).Error)
	assert.Equal(t, int64(0), types)
}
