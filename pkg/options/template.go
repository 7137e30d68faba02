// Package options decodes the legacy "extra product options" templates and
// resolves which products each generated option applies to. The legacy
// format is a PHP-serialized mapping of parallel arrays indexed by section
// and option key; it is parsed once here into typed structures so the
// resolver never touches raw maps.
package options

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/elliotchance/phpserialize"
)

// Template is the typed form of one tm_meta blob
type Template struct {
	Priority       int
	ElementTypes   []string
	InternalName   string
	HeaderTitle    string
	HeaderSubtitle string

	// SectionLogic holds the decoded sections_clogic entry per section index
	SectionLogic map[int]Logic

	// Product source definitions, parallel arrays indexed by source position
	ProductUniqIDs     map[int]string
	ProductLogic       []Logic
	ProductEnabled     map[int]bool
	ProductModes       map[int]string
	ProductCategoryIDs map[int][]uint64
	ProductProductIDs  map[int][]uint64
	ProductOrderBy     map[int]string
	ProductOrder       map[int]string

	// Options holds the radio button option config per [section][key]
	Options map[int]map[int]OptionConfig
}

// OptionConfig is one selectable option of a radio button section
type OptionConfig struct {
	Enabled     bool
	Value       string
	Title       string
	Description string
	Price       string
	Image       string
	LargeImage  string
}

// Logic is one conditional display logic entry
type Logic struct {
	Section string `json:"section"`
	Element string `json:"element"`
	Toggle  string `json:"toggle"`
	What    string `json:"what"`
	Rules   []Rule `json:"rules"`
}

// Rule compares a referenced section's chosen value against a literal
type Rule struct {
	Section  string `json:"section"`
	Element  string `json:"element"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Parse decodes a PHP-serialized template blob. It returns nil without an
// error when the blob carries no tmfbuilder section.
func Parse(data []byte) (*Template, error) {
	var content map[interface{}]interface{}
	if err := phpserialize.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("failed to unserialize template: %w", err)
	}

	builder := asMap(content["tmfbuilder"])
	if builder == nil {
		return nil, nil
	}

	tpl := &Template{
		Priority:           asInt(content["priority"]),
		ElementTypes:       asStringList(builder["element_type"]),
		SectionLogic:       map[int]Logic{},
		ProductUniqIDs:     asStringMap(builder["product_uniqid"]),
		ProductEnabled:     asBoolMap(builder["product_enabled"]),
		ProductModes:       asStringMap(builder["product_mode"]),
		ProductCategoryIDs: asIDListMap(builder["product_categoryids"]),
		ProductProductIDs:  asIDListMap(builder["product_productids"]),
		ProductOrderBy:     asStringMap(builder["product_orderby"]),
		ProductOrder:       asStringMap(builder["product_order"]),
		Options:            map[int]map[int]OptionConfig{},
	}

	if names := asStringMap(builder["sections_internal_name"]); len(names) > 0 {
		tpl.InternalName = names[0]
	}
	if titles := asStringMap(builder["section_header_title"]); len(titles) > 0 {
		tpl.HeaderTitle = titles[0]
	}
	if subs := asStringMap(builder["section_header_subtitle"]); len(subs) > 0 {
		tpl.HeaderSubtitle = subs[0]
	}

	for idx, raw := range asStringMap(builder["sections_clogic"]) {
		var logic Logic
		if raw == "" || json.Unmarshal([]byte(raw), &logic) != nil {
			continue
		}
		tpl.SectionLogic[idx] = logic
	}

	for _, idx := range sortedKeys(asStringMap(builder["product_clogic"])) {
		raw := asStringMap(builder["product_clogic"])[idx]
		var logic Logic
		if raw == "" || json.Unmarshal([]byte(raw), &logic) != nil {
			continue
		}
		tpl.ProductLogic = append(tpl.ProductLogic, logic)
	}

	tpl.parseOptions(builder)

	return tpl, nil
}

// parseOptions assembles the per-option configuration from the parallel
// index-aligned arrays of the radio button sections
func (t *Template) parseOptions(builder map[interface{}]interface{}) {
	enabled := asNestedMap(builder["multiple_radiobuttons_options_enabled"])
	values := asNestedStringMap(builder["multiple_radiobuttons_options_value"])
	titles := asNestedStringMap(builder["multiple_radiobuttons_options_title"])
	prices := asNestedStringMap(builder["multiple_radiobuttons_options_price"])
	images := asNestedStringMap(builder["multiple_radiobuttons_options_image"])
	largeImages := asNestedStringMap(builder["multiple_radiobuttons_options_imagel"])
	descriptions := asNestedStringMap(builder["multiple_radiobuttons_options_description"])

	for idx, list := range enabled {
		for key, status := range list {
			option := OptionConfig{
				Enabled:     asBool(status),
				Value:       values[idx][key],
				Title:       titles[idx][key],
				Price:       prices[idx][key],
				Image:       images[idx][key],
				LargeImage:  largeImages[idx][key],
				Description: descriptions[idx][key],
			}
			if t.Options[idx] == nil {
				t.Options[idx] = map[int]OptionConfig{}
			}
			t.Options[idx][key] = option
		}
	}
}

// HasRadioButtons reports whether the template defines a radio button
// section with at least one option
func (t *Template) HasRadioButtons() bool {
	for _, typ := range t.ElementTypes {
		if typ == "radiobuttons" {
			return len(t.Options) > 0
		}
	}
	return false
}

// SectionIndexes returns the option section indexes in ascending order
func (t *Template) SectionIndexes() []int {
	return sortedKeys(t.Options)
}

// OptionKeys returns the option keys of one section in ascending order
func (t *Template) OptionKeys(idx int) []int {
	return sortedKeys(t.Options[idx])
}

// sortedKeys returns the keys of an int-keyed map in ascending order
func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// The helpers below normalize phpserialize output: array keys arrive as
// int64 or string, values as string, int64, float64 or bool depending on
// how the legacy plugin stored them.

func asMap(v interface{}) map[interface{}]interface{} {
	m, _ := v.(map[interface{}]interface{})
	return m
}

func asString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case []byte:
		return string(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		if value {
			return "1"
		}
		return ""
	default:
		return ""
	}
}

func asInt(v interface{}) int {
	switch value := v.(type) {
	case int64:
		return int(value)
	case float64:
		return int(value)
	case string:
		n, _ := strconv.Atoi(value)
		return n
	default:
		return 0
	}
}

// asBool follows PHP truthiness: "" and "0" are false, everything else true
func asBool(v interface{}) bool {
	switch value := v.(type) {
	case bool:
		return value
	case int64:
		return value != 0
	case float64:
		return value != 0
	case string:
		return value != "" && value != "0"
	default:
		return false
	}
}

func asKey(v interface{}) (int, bool) {
	switch value := v.(type) {
	case int64:
		return int(value), true
	case string:
		n, err := strconv.Atoi(value)
		return n, err == nil
	default:
		return 0, false
	}
}

func asStringMap(v interface{}) map[int]string {
	result := map[int]string{}
	for k, value := range asMap(v) {
		if key, ok := asKey(k); ok {
			result[key] = asString(value)
		}
	}
	return result
}

func asBoolMap(v interface{}) map[int]bool {
	result := map[int]bool{}
	for k, value := range asMap(v) {
		if key, ok := asKey(k); ok {
			result[key] = asBool(value)
		}
	}
	return result
}

func asStringList(v interface{}) []string {
	m := asStringMap(v)
	result := make([]string, 0, len(m))
	for _, key := range sortedKeys(m) {
		result = append(result, m[key])
	}
	return result
}

func asIDListMap(v interface{}) map[int][]uint64 {
	result := map[int][]uint64{}
	for k, value := range asMap(v) {
		key, ok := asKey(k)
		if !ok {
			continue
		}
		var ids []uint64
		for _, inner := range sortedEntries(asMap(value)) {
			if id, err := strconv.ParseUint(asString(inner), 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
		result[key] = ids
	}
	return result
}

func asNestedMap(v interface{}) map[int]map[int]interface{} {
	result := map[int]map[int]interface{}{}
	for k, value := range asMap(v) {
		key, ok := asKey(k)
		if !ok {
			continue
		}
		inner := map[int]interface{}{}
		for ik, iv := range asMap(value) {
			if innerKey, ok := asKey(ik); ok {
				inner[innerKey] = iv
			}
		}
		result[key] = inner
	}
	return result
}

func asNestedStringMap(v interface{}) map[int]map[int]string {
	result := map[int]map[int]string{}
	for key, inner := range asNestedMap(v) {
		strings := map[int]string{}
		for innerKey, value := range inner {
			strings[innerKey] = asString(value)
		}
		result[key] = strings
	}
	return result
}

// sortedEntries returns the values of an int-or-string keyed PHP array in
// ascending key order
func sortedEntries(m map[interface{}]interface{}) []interface{} {
	keyed := map[int]interface{}{}
	for k, v := range m {
		if key, ok := asKey(k); ok {
			keyed[key] = v
		}
	}
	result := make([]interface{}, 0, len(keyed))
	for _, key := range sortedKeys(keyed) {
		result = append(result, keyed[key])
	}
	return result
}

// IDList decodes a PHP-serialized list of numeric ids, as stored in the
// cross-sell and exclude meta values. Returns nil for empty or corrupt input.
func IDList(data string) []uint64 {
	if data == "" {
		return nil
	}

	var decoded interface{}
	if err := phpserialize.Unmarshal([]byte(data), &decoded); err != nil {
		return nil
	}

	var ids []uint64
	for _, value := range sortedEntries(asMap(decoded)) {
		if id, err := strconv.ParseUint(asString(value), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
