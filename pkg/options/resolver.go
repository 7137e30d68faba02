package options

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"woomigrate/pkg/logging"
)

// Product source modes stored in the legacy templates.
const (
	ModeCategories = "categories"
	ModeProducts   = "products"
	ModeProduct    = "product"
)

// CategoryProducts looks up the sorted product ids attached to categories
type CategoryProducts interface {
	SortedByCategories(ctx context.Context, catIDs []uint64, sortBy, dir string) ([]uint64, error)
}

// Resolver matches option values against the template's conditional logic
// to determine which products an option applies to
type Resolver struct {
	lookup CategoryProducts
	log    *logging.Logger
}

// NewResolver creates a resolver using the given category product lookup
func NewResolver(lookup CategoryProducts, log *logging.Logger) *Resolver {
	return &Resolver{lookup: lookup, log: log}
}

// Products returns the ordered product ids for the option at the given
// section index and option key. Options without matching logic yield an
// empty result, which is not an error.
//
// Candidates accumulate across logic entries in entry order and duplicates
// are kept; within one entry's rule list the last matching rule wins. Both
// quirks reproduce the legacy behavior on purpose.
func (r *Resolver) Products(ctx context.Context, tpl *Template, idx, key int) ([]uint64, error) {
	section, ok := tpl.SectionLogic[idx]
	if !ok || section.Section == "" {
		return nil, nil
	}

	value := tpl.Options[idx][key].Value

	// reverse lookup from anchor id to product source position
	positions := make(map[string]int, len(tpl.ProductUniqIDs))
	for pos, id := range tpl.ProductUniqIDs {
		positions[id] = pos
	}

	var ids []uint64

	for _, entry := range tpl.ProductLogic {
		matched := ""
		for _, rule := range entry.Rules {
			if rule.Section == section.Section && value == urlDecode(rule.Value) {
				matched = entry.Element
			}
		}

		pos, ok := positions[matched]
		if !ok || !tpl.ProductEnabled[pos] {
			continue
		}

		switch tpl.ProductModes[pos] {
		case ModeCategories:
			sortBy := tpl.ProductOrderBy[pos]
			if sortBy == "" {
				sortBy = "ID"
			}
			dir := tpl.ProductOrder[pos]
			if dir == "" {
				dir = "asc"
			}
			more, err := r.lookup.SortedByCategories(ctx, tpl.ProductCategoryIDs[pos], sortBy, dir)
			if err != nil {
				return nil, err
			}
			ids = append(ids, more...)
		case ModeProducts, ModeProduct:
			ids = append(ids, tpl.ProductProductIDs[pos]...)
		default:
			r.log.Warn("unknown product source mode, skipping",
				zap.String("mode", tpl.ProductModes[pos]),
				zap.Int("source", pos))
		}
	}

	return ids, nil
}

// urlDecode decodes a percent-encoded rule literal, falling back to the
// raw value when it is not valid encoding
func urlDecode(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
