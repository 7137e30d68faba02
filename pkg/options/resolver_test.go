package options

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"woomigrate/pkg/logging"
)

// fakeLookup records the category query and returns canned product ids
type fakeLookup struct {
	catIDs []uint64
	sortBy string
	dir    string
	result []uint64
}

func (f *fakeLookup) SortedByCategories(_ context.Context, catIDs []uint64, sortBy, dir string) ([]uint64, error) {
	f.catIDs = catIDs
	f.sortBy = sortBy
	f.dir = dir
	return f.result, nil
}

func testTemplate() *Template {
	return &Template{
		SectionLogic: map[int]Logic{
			0: {Section: "S1"},
		},
		ProductUniqIDs: map[int]string{0: "E1"},
		ProductLogic: []Logic{
			{Element: "E1", Rules: []Rule{
				{Section: "S1", Operator: "is", Value: "Chrome"},
			}},
		},
		ProductEnabled:    map[int]bool{0: true},
		ProductModes:      map[int]string{0: ModeProducts},
		ProductProductIDs: map[int][]uint64{0: {101, 102}},
		Options: map[int]map[int]OptionConfig{
			0: {
				0: {Enabled: true, Value: "Chrome"},
				1: {Enabled: true, Value: "Matte"},
			},
		},
	}
}

func TestResolver_MatchingOption(t *testing.T) {
	r := NewResolver(&fakeLookup{}, logging.NewNop())

	ids, err := r.Products(context.Background(), testTemplate(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{101, 102}, ids)
}

func TestResolver_NonMatchingOption(t *testing.T) {
	r := NewResolver(&fakeLookup{}, logging.NewNop())

	// The Matte option matches no logic entry
	ids, err := r.Products(context.Background(), testTemplate(), 0, 1)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolver_NoSectionLogic(t *testing.T) {
	tpl := testTemplate()
	tpl.SectionLogic = map[int]Logic{}

	r := NewResolver(&fakeLookup{}, logging.NewNop())
	ids, err := r.Products(context.Background(), tpl, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolver_URLDecodedRuleValue(t *testing.T) {
	tpl := testTemplate()
	tpl.ProductLogic[0].Rules[0].Value = "One%20Tap%20(for%20Single%20Basin)"
	tpl.Options[0][0] = OptionConfig{Enabled: true, Value: "One Tap (for Single Basin)"}

	r := NewResolver(&fakeLookup{}, logging.NewNop())
	ids, err := r.Products(context.Background(), tpl, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{101, 102}, ids)
}

func TestResolver_CategoriesMode(t *testing.T) {
	tpl := testTemplate()
	tpl.ProductModes[0] = ModeCategories
	tpl.ProductCategoryIDs = map[int][]uint64{0: {10, 20}}
	tpl.ProductOrderBy = map[int]string{0: "baseprice"}
	tpl.ProductOrder = map[int]string{0: "asc"}

	lookup := &fakeLookup{result: []uint64{2, 1}}
	r := NewResolver(lookup, logging.NewNop())

	ids, err := r.Products(context.Background(), tpl, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 1}, ids)
	assert.Equal(t, []uint64{10, 20}, lookup.catIDs)
	assert.Equal(t, "baseprice", lookup.sortBy)
	assert.Equal(t, "asc", lookup.dir)
}

func TestResolver_CategoriesModeDefaults(t *testing.T) {
	tpl := testTemplate()
	tpl.ProductModes[0] = ModeCategories
	tpl.ProductCategoryIDs = map[int][]uint64{0: {10}}

	lookup := &fakeLookup{}
	r := NewResolver(lookup, logging.NewNop())

	_, err := r.Products(context.Background(), tpl, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "ID", lookup.sortBy)
	assert.Equal(t, "asc", lookup.dir)
}

func TestResolver_DisabledSourceSkipped(t *testing.T) {
	tpl := testTemplate()
	tpl.ProductEnabled[0] = false

	r := NewResolver(&fakeLookup{}, logging.NewNop())
	ids, err := r.Products(context.Background(), tpl, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolver_UnknownModeSkipped(t *testing.T) {
	tpl := testTemplate()
	tpl.ProductModes[0] = "wishlist"

	r := NewResolver(&fakeLookup{}, logging.NewNop())
	ids, err := r.Products(context.Background(), tpl, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolver_DuplicatesAcrossEntriesKept(t *testing.T) {
	tpl := testTemplate()
	tpl.ProductUniqIDs = map[int]string{0: "E1", 1: "E2"}
	tpl.ProductLogic = []Logic{
		{Element: "E1", Rules: []Rule{{Section: "S1", Value: "Chrome"}}},
		{Element: "E2", Rules: []Rule{{Section: "S1", Value: "Chrome"}}},
	}
	tpl.ProductEnabled[1] = true
	tpl.ProductModes[1] = ModeProduct
	tpl.ProductProductIDs[1] = []uint64{102, 103}

	r := NewResolver(&fakeLookup{}, logging.NewNop())
	ids, err := r.Products(context.Background(), tpl, 0, 0)
	require.NoError(t, err)

	// 102 appears twice: the resolver does not deduplicate
	assert.Equal(t, []uint64{101, 102, 102, 103}, ids)
}

func TestResolver_LastMatchingRuleWins(t *testing.T) {
	tpl := testTemplate()
	// Two rules in one entry; the second references another section and
	// does not match, the earlier match must still hold
	tpl.ProductLogic[0].Rules = append(tpl.ProductLogic[0].Rules,
		Rule{Section: "S9", Value: "Other"})

	r := NewResolver(&fakeLookup{}, logging.NewNop())
	ids, err := r.Products(context.Background(), tpl, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{101, 102}, ids)
}
