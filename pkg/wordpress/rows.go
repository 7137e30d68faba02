package wordpress

import (
	"context"
	"database/sql"
	"fmt"
)

// AttributeTaxonomy is one global attribute taxonomy definition
type AttributeTaxonomy struct {
	Name  string
	Label string
}

// Term is a taxonomy term row, used for attributes
type Term struct {
	TermID      uint64
	Name        string
	Slug        string
	Taxonomy    string
	Description string
}

// BrandTerm is a brand taxonomy term with its SEO meta values
type BrandTerm struct {
	TermID      uint64
	Name        string
	Slug        string
	Description string
	MetaTitle   sql.NullString
	MetaDesc    sql.NullString
}

// CategoryTerm is a product category term with its parent pointer
type CategoryTerm struct {
	TermID      uint64
	Parent      uint64
	Name        string
	Slug        string
	Description string
	MetaTitle   sql.NullString
	MetaDesc    sql.NullString
}

// ProductRow is a product or product variation post
type ProductRow struct {
	ID            uint64
	Parent        uint64
	Title         string
	Excerpt       string
	Content       string
	Slug          string
	DateGMT       string
	Type          string
	SKU           string
	StockQuantity sql.NullInt64
	StockStatus   string
}

// MetaRow is a postmeta key/value pair for one post
type MetaRow struct {
	PostID uint64
	Key    string
	Value  string
}

// MetaValueRow is a postmeta value for one post
type MetaValueRow struct {
	PostID uint64
	Value  string
}

// TermRelation links a post to a term with its ordering
type TermRelation struct {
	PostID   uint64
	TermID   uint64
	Position int
}

// ImageRow is a product thumbnail attachment
type ImageRow struct {
	PostID uint64
	Title  string
	File   string
}

// TemplateRow is one extra-product-options template post per category
type TemplateRow struct {
	ID       uint64
	CatID    uint64
	Template string
	Excludes sql.NullString
}

// AttributeTaxonomies returns the global attribute taxonomy definitions
func (s *Source) AttributeTaxonomies(ctx context.Context) ([]AttributeTaxonomy, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT attribute_name, attribute_label FROM wp_woocommerce_attribute_taxonomies")
	if err != nil {
		return nil, fmt.Errorf("failed to query attribute taxonomies: %w", err)
	}
	defer rows.Close()

	var result []AttributeTaxonomy
	for rows.Next() {
		var row AttributeTaxonomy
		if err := rows.Scan(&row.Name, &row.Label); err != nil {
			return nil, fmt.Errorf("failed to scan attribute taxonomy: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// AttributeTerms returns all attribute taxonomy terms, grouped by taxonomy
func (s *Source) AttributeTerms(ctx context.Context) ([]Term, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.term_id, t.name, t.slug, tt.taxonomy, tt.description
		FROM wp_terms t
		JOIN wp_term_taxonomy tt ON t.term_id=tt.term_id
		WHERE taxonomy LIKE 'pa_%'
		ORDER BY tt.taxonomy, t.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query attribute terms: %w", err)
	}
	defer rows.Close()

	var result []Term
	for rows.Next() {
		var row Term
		if err := rows.Scan(&row.TermID, &row.Name, &row.Slug, &row.Taxonomy, &row.Description); err != nil {
			return nil, fmt.Errorf("failed to scan attribute term: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// BrandTerms returns all brand taxonomy terms
func (s *Source) BrandTerms(ctx context.Context) ([]BrandTerm, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			t.term_id, t.name, t.slug, tt.description,
			st.meta_value AS metatitle,
			sd.meta_value AS metadesc
		FROM wp_terms t
		JOIN wp_term_taxonomy tt ON t.term_id=tt.term_id
		LEFT JOIN wp_termmeta st ON st.term_id=t.term_id AND st.meta_key='_seopress_titles_title'
		LEFT JOIN wp_termmeta sd ON sd.term_id=t.term_id AND sd.meta_key='_seopress_titles_desc'
		WHERE taxonomy='brand'
		ORDER BY t.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query brand terms: %w", err)
	}
	defer rows.Close()

	var result []BrandTerm
	for rows.Next() {
		var row BrandTerm
		if err := rows.Scan(&row.TermID, &row.Name, &row.Slug, &row.Description, &row.MetaTitle, &row.MetaDesc); err != nil {
			return nil, fmt.Errorf("failed to scan brand term: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// CategoryTerms returns all product category terms, parents first
func (s *Source) CategoryTerms(ctx context.Context) ([]CategoryTerm, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			t.term_id, tt.parent, t.name, t.slug, tt.description,
			st.meta_value AS metatitle,
			sd.meta_value AS metadesc
		FROM wp_terms t
		JOIN wp_term_taxonomy tt ON t.term_id=tt.term_id
		LEFT JOIN wp_termmeta st ON st.term_id=t.term_id AND st.meta_key='_seopress_titles_title'
		LEFT JOIN wp_termmeta sd ON sd.term_id=t.term_id AND sd.meta_key='_seopress_titles_desc'
		WHERE taxonomy='product_cat'
		ORDER BY tt.parent, t.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category terms: %w", err)
	}
	defer rows.Close()

	var result []CategoryTerm
	for rows.Next() {
		var row CategoryTerm
		if err := rows.Scan(&row.TermID, &row.Parent, &row.Name, &row.Slug, &row.Description, &row.MetaTitle, &row.MetaDesc); err != nil {
			return nil, fmt.Errorf("failed to scan category term: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Products returns all published products with their type and stock data
func (s *Source) Products(ctx context.Context) ([]ProductRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			p.ID,
			p.post_title,
			p.post_excerpt,
			p.post_content,
			p.post_name,
			p.post_date_gmt,
			t.name AS type,
			pm.sku,
			pm.stock_quantity,
			pm.stock_status
		FROM wp_posts p
		JOIN wp_wc_product_meta_lookup pm ON p.ID = pm.product_id
		JOIN wp_term_relationships tr ON p.ID = tr.object_id
		JOIN wp_term_taxonomy tt ON tt.term_taxonomy_id = tr.term_taxonomy_id
		JOIN wp_terms t ON t.term_id = tt.term_id
		WHERE p.post_type = 'product' AND p.post_status = 'publish' AND tt.taxonomy='product_type'
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []ProductRow
	for rows.Next() {
		var row ProductRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Excerpt, &row.Content, &row.Slug,
			&row.DateGMT, &row.Type, &row.SKU, &row.StockQuantity, &row.StockStatus); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Variations returns all published product variations
func (s *Source) Variations(ctx context.Context) ([]ProductRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			p.ID,
			p.post_parent,
			p.post_title,
			p.post_name,
			p.post_date_gmt,
			pm.sku,
			pm.stock_quantity,
			pm.stock_status
		FROM wp_posts p
		JOIN wp_wc_product_meta_lookup pm ON p.ID = pm.product_id
		WHERE p.post_type = 'product_variation' AND p.post_status = 'publish'
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query product variations: %w", err)
	}
	defer rows.Close()

	var result []ProductRow
	for rows.Next() {
		var row ProductRow
		if err := rows.Scan(&row.ID, &row.Parent, &row.Title, &row.Slug,
			&row.DateGMT, &row.SKU, &row.StockQuantity, &row.StockStatus); err != nil {
			return nil, fmt.Errorf("failed to scan product variation: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// VariantAttributes returns the attribute meta of all product variations
func (s *Source) VariantAttributes(ctx context.Context) ([]MetaRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.ID, pm.meta_key, pm.meta_value
		FROM wp_posts p
		JOIN wp_postmeta pm ON p.ID = pm.post_id
		WHERE p.post_type = 'product_variation'
			AND p.post_status = 'publish'
			AND pm.meta_key LIKE 'attribute_%'
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query variant attributes: %w", err)
	}
	defer rows.Close()

	return scanMetaRows(rows)
}

// ProductBrands returns product to brand term relations
func (s *Source) ProductBrands(ctx context.Context) ([]TermRelation, error) {
	return s.productTerms(ctx, `
		SELECT p.ID, t.term_id AS brandid, tr.term_order AS pos
		FROM wp_posts p
		JOIN wp_term_relationships tr ON p.ID = tr.object_id
		JOIN wp_term_taxonomy tt ON tt.term_taxonomy_id = tr.term_taxonomy_id
		JOIN wp_terms t ON t.term_id = tt.term_id
		WHERE p.post_type = 'product' AND p.post_status = 'publish' AND tt.taxonomy='brand'
	`)
}

// ProductCategories returns product to category term relations
func (s *Source) ProductCategories(ctx context.Context) ([]TermRelation, error) {
	return s.productTerms(ctx, `
		SELECT p.ID, t.term_id AS catid, tr.term_order AS pos
		FROM wp_posts p
		JOIN wp_term_relationships tr ON p.ID = tr.object_id
		JOIN wp_term_taxonomy tt ON tt.term_taxonomy_id = tr.term_taxonomy_id
		JOIN wp_terms t ON t.term_id = tt.term_id
		WHERE p.post_type = 'product' AND p.post_status = 'publish' AND tt.taxonomy='product_cat'
	`)
}

func (s *Source) productTerms(ctx context.Context, query string) ([]TermRelation, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query product terms: %w", err)
	}
	defer rows.Close()

	var result []TermRelation
	for rows.Next() {
		var row TermRelation
		if err := rows.Scan(&row.PostID, &row.TermID, &row.Position); err != nil {
			return nil, fmt.Errorf("failed to scan product term: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ProductImages returns the thumbnail file of each product
func (s *Source) ProductImages(ctx context.Context) ([]ImageRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.ID, p.post_title, am.meta_value AS image
		FROM wp_posts p
		JOIN wp_postmeta pm ON pm.post_id = p.ID AND pm.meta_key = '_thumbnail_id'
		JOIN wp_postmeta am ON am.post_id = pm.meta_value AND am.meta_key = '_wp_attached_file'
		WHERE p.post_type = 'product' AND p.post_status = 'publish'
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	var result []ImageRow
	for rows.Next() {
		var row ImageRow
		if err := rows.Scan(&row.PostID, &row.Title, &row.File); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// TaxRate returns the first configured tax rate, or "" when the shop has none
func (s *Source) TaxRate(ctx context.Context) (string, error) {
	if !s.HasTable(ctx, "wp_woocommerce_tax_rates") {
		return "", nil
	}

	var rate string
	err := s.db.QueryRowContext(ctx,
		"SELECT tax_rate FROM wp_woocommerce_tax_rates LIMIT 1").Scan(&rate)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query tax rate: %w", err)
	}
	return rate, nil
}

// RegularPrices returns the regular price meta of every product
func (s *Source) RegularPrices(ctx context.Context) ([]MetaValueRow, error) {
	return s.metaValues(ctx, "_regular_price")
}

// SalePrices returns the sale price meta of every product
func (s *Source) SalePrices(ctx context.Context) ([]MetaValueRow, error) {
	return s.metaValues(ctx, "_sale_price")
}

// CrossSells returns the serialized cross-sell id lists
func (s *Source) CrossSells(ctx context.Context) ([]MetaValueRow, error) {
	return s.metaValues(ctx, "_crosssell_ids")
}

func (s *Source) metaValues(ctx context.Context, metaKey string) ([]MetaValueRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT post_id, meta_value
		FROM wp_postmeta
		WHERE meta_key = ?
	`, metaKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s meta: %w", metaKey, err)
	}
	defer rows.Close()

	var result []MetaValueRow
	for rows.Next() {
		var row MetaValueRow
		if err := rows.Scan(&row.PostID, &row.Value); err != nil {
			return nil, fmt.Errorf("failed to scan %s meta: %w", metaKey, err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ProductProperties returns the dimension and weight meta of every product
func (s *Source) ProductProperties(ctx context.Context) ([]MetaRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT post_id, meta_key, meta_value
		FROM wp_postmeta
		WHERE meta_key in ('_weight', '_width', '_length', '_height')
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query product properties: %w", err)
	}
	defer rows.Close()

	return scanMetaRows(rows)
}

// ExtraOptionTemplates returns the extra-product-options template posts per
// category, excluding templates disabled for category use
func (s *Source) ExtraOptionTemplates(ctx context.Context) ([]TemplateRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			p.ID,
			t.term_id AS catid,
			pmt.meta_value AS template,
			pme.meta_value AS excludes
		FROM wp_posts p
		JOIN wp_term_relationships tr ON p.ID = tr.object_id
		JOIN wp_term_taxonomy tt ON tt.term_taxonomy_id = tr.term_taxonomy_id
		JOIN wp_terms t ON t.term_id = tt.term_id
		JOIN wp_postmeta pmt ON p.ID = pmt.post_id AND pmt.meta_key = 'tm_meta'
		LEFT JOIN wp_postmeta pme ON p.ID = pme.post_id AND pme.meta_key = 'tm_meta_product_exclude_ids'
		LEFT JOIN wp_postmeta pmd ON p.ID = pmd.post_id AND pmd.meta_key = 'tm_meta_disable_categories'
		WHERE
			p.post_status = 'publish' AND p.post_type = 'tm_global_cp' AND
			( pmd.meta_value != '1' OR pmd.meta_value IS NULL ) AND
			tt.taxonomy = 'product_cat'
		ORDER BY p.ID
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query option templates: %w", err)
	}
	defer rows.Close()

	var result []TemplateRow
	for rows.Next() {
		var row TemplateRow
		if err := rows.Scan(&row.ID, &row.CatID, &row.Template, &row.Excludes); err != nil {
			return nil, fmt.Errorf("failed to scan option template: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func scanMetaRows(rows *sql.Rows) ([]MetaRow, error) {
	var result []MetaRow
	for rows.Next() {
		var row MetaRow
		if err := rows.Scan(&row.PostID, &row.Key, &row.Value); err != nil {
			return nil, fmt.Errorf("failed to scan meta row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
