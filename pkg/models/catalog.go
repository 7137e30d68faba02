package models

import "time"

// Domain names used to scope records and list associations.
const (
	DomainAttribute = "attribute"
	DomainCatalog   = "catalog"
	DomainMedia     = "media"
	DomainPrice     = "price"
	DomainProduct   = "product"
	DomainSupplier  = "supplier"
	DomainText      = "text"
)

// List association types.
const (
	ListTypeDefault = "default"
	ListTypeVariant = "variant"
	ListTypeConfig  = "config"
	ListTypeSuggest = "suggest"
)

// Text types attached to imported records.
const (
	TextTypeLong      = "long"
	TextTypeMetaTitle = "meta-title"
	TextTypeMetaDesc  = "meta-description"
)

// AttributeType groups attributes, e.g. one type per option template section
type AttributeType struct {
	ID       uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Domain   string `json:"domain" gorm:"type:varchar(32);uniqueIndex:idx_attribute_type_code"`
	Code     string `json:"code" gorm:"type:varchar(255);uniqueIndex:idx_attribute_type_code"`
	Label    string `json:"label" gorm:"type:varchar(255)"`
	Position int    `json:"position"`
	I18n     string `json:"i18n" gorm:"type:text"` // JSON map of language id to localized name
}

// TableName specifies the table name for GORM
func (AttributeType) TableName() string {
	return "shop_attribute_type"
}

// Attribute is a selectable product attribute value
type Attribute struct {
	ID       uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Domain   string `json:"domain" gorm:"type:varchar(32);uniqueIndex:idx_attribute_code"`
	Type     string `json:"type" gorm:"type:varchar(255);uniqueIndex:idx_attribute_code"`
	Code     string `json:"code" gorm:"type:varchar(255);uniqueIndex:idx_attribute_code"`
	Label    string `json:"label" gorm:"type:varchar(255)"`
	Position int    `json:"position"`
}

// TableName specifies the table name for GORM
func (Attribute) TableName() string {
	return "shop_attribute"
}

// Product is a catalog article, variant or product group
type Product struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Code        string    `json:"code" gorm:"type:varchar(255);uniqueIndex"`
	Label       string    `json:"label" gorm:"type:varchar(255)"`
	URL         string    `json:"url" gorm:"type:varchar(255)"`
	Type        string    `json:"type" gorm:"type:varchar(32)"`
	TimeCreated time.Time `json:"time_created"`
}

// TableName specifies the table name for GORM
func (Product) TableName() string {
	return "shop_product"
}

// Catalog is a category tree node (adjacency list, root has ParentID 0)
type Catalog struct {
	ID       uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ParentID uint64 `json:"parent_id" gorm:"index"`
	Code     string `json:"code" gorm:"type:varchar(255);uniqueIndex"`
	Label    string `json:"label" gorm:"type:varchar(255)"`
	URL      string `json:"url" gorm:"type:varchar(255)"`
}

// TableName specifies the table name for GORM
func (Catalog) TableName() string {
	return "shop_catalog"
}

// Supplier is a brand or vendor
type Supplier struct {
	ID    uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Code  string `json:"code" gorm:"type:varchar(255);uniqueIndex"`
	Label string `json:"label" gorm:"type:varchar(255)"`
}

// TableName specifies the table name for GORM
func (Supplier) TableName() string {
	return "shop_supplier"
}

// Price carries a monetary value referenced from products or attributes
type Price struct {
	ID         uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Domain     string `json:"domain" gorm:"type:varchar(32)"`
	Type       string `json:"type" gorm:"type:varchar(32)"`
	CurrencyID string `json:"currency_id" gorm:"type:varchar(3)"`
	Value      string `json:"value" gorm:"type:varchar(32)"`
	TaxRate    string `json:"tax_rate" gorm:"type:varchar(32)"`
}

// TableName specifies the table name for GORM
func (Price) TableName() string {
	return "shop_price"
}

// Media is an image or file referenced from products or attributes
type Media struct {
	ID       uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Domain   string `json:"domain" gorm:"type:varchar(32)"`
	Type     string `json:"type" gorm:"type:varchar(32)"`
	Label    string `json:"label" gorm:"type:varchar(255)"`
	URL      string `json:"url" gorm:"type:varchar(255)"`
	MimeType string `json:"mimetype" gorm:"type:varchar(64)"`
}

// TableName specifies the table name for GORM
func (Media) TableName() string {
	return "shop_media"
}

// Text is a localized content block referenced from imported records
type Text struct {
	ID         uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Domain     string `json:"domain" gorm:"type:varchar(32)"`
	Type       string `json:"type" gorm:"type:varchar(32)"`
	LanguageID string `json:"language_id" gorm:"type:varchar(8)"`
	Label      string `json:"label" gorm:"type:varchar(255)"`
	Content    string `json:"content" gorm:"type:text"`
}

// TableName specifies the table name for GORM
func (Text) TableName() string {
	return "shop_text"
}

// Stock is the stock level of one product, unique per (product, type)
type Stock struct {
	ID         uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID  uint64 `json:"product_id" gorm:"uniqueIndex:idx_stock_product"`
	Type       string `json:"type" gorm:"type:varchar(32);uniqueIndex:idx_stock_product"`
	StockLevel *int64 `json:"stock_level"` // nil means unlimited
}

// TableName specifies the table name for GORM
func (Stock) TableName() string {
	return "shop_stock"
}

// ProductProperty is a scalar product property such as weight or width
type ProductProperty struct {
	ID        uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID uint64 `json:"product_id" gorm:"uniqueIndex:idx_property_product"`
	Type      string `json:"type" gorm:"type:varchar(32);uniqueIndex:idx_property_product"`
	Value     string `json:"value" gorm:"type:varchar(255)"`
}

// TableName specifies the table name for GORM
func (ProductProperty) TableName() string {
	return "shop_product_property"
}

// ListItem is a typed, positioned association from a parent record to a
// referenced record in another domain. The unique index is what makes
// re-imports match existing associations instead of appending duplicates.
type ListItem struct {
	ID           uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ParentDomain string `json:"parent_domain" gorm:"type:varchar(32);uniqueIndex:idx_list_item_key"`
	ParentID     uint64 `json:"parent_id" gorm:"uniqueIndex:idx_list_item_key"`
	Domain       string `json:"domain" gorm:"type:varchar(32);uniqueIndex:idx_list_item_key"`
	Type         string `json:"type" gorm:"type:varchar(32);uniqueIndex:idx_list_item_key"`
	RefID        uint64 `json:"ref_id" gorm:"uniqueIndex:idx_list_item_key"`
	Position     int    `json:"position"`
}

// TableName specifies the table name for GORM
func (ListItem) TableName() string {
	return "shop_list_item"
}

// All returns every destination model for schema migration
func All() []interface{} {
	return []interface{}{
		&AttributeType{},
		&Attribute{},
		&Product{},
		&Catalog{},
		&Supplier{},
		&Price{},
		&Media{},
		&Text{},
		&Stock{},
		&ProductProperty{},
		&ListItem{},
	}
}
