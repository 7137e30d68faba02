// Package tasks contains the WooCommerce catalog import tasks. Each task
// reads legacy rows through the wordpress source, maps them onto the
// destination models and persists everything in one transaction, keeping
// the legacy numeric ids as the canonical destination ids.
package tasks

import (
	"fmt"
	"strings"
	"time"

	"woomigrate/pkg/logging"
	"woomigrate/pkg/migration"
	"woomigrate/pkg/repository"
	"woomigrate/pkg/wordpress"
)

// base carries the collaborators shared by every task.
type base struct {
	src   *wordpress.Source
	reg   *repository.Registry
	log   *logging.Logger
	ic    migration.ImportContext
	stats migration.Stats
}

// Stats returns the per-record counters of the last run.
func (b *base) Stats() migration.Stats { return b.stats }

// productCode derives the destination product code from the legacy SKU,
// falling back to a synthetic code for products without one.
func productCode(sku string, legacyID uint64) string {
	if code := strings.ReplaceAll(sku, " ", "-"); code != "" {
		return code
	}
	return fmt.Sprintf("woo-%d", legacyID)
}

// productType maps the legacy product type term onto the destination
// product types.
func productType(value string) string {
	switch value {
	case "grouped":
		return "group"
	case "variable":
		return "select"
	default:
		return "default"
	}
}

// parseTime decodes a legacy GMT timestamp, zero when unparseable.
func parseTime(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// stripTags removes markup tags, keeping only the text content.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// textLabel derives a short list label from a content block.
func textLabel(content string, max int) string {
	runes := []rune(stripTags(content))
	if len(runes) > max {
		runes = runes[:max]
	}
	return string(runes)
}
