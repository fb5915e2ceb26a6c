package usecase

import (
	"strings"

	"github.com/pricescout/backend/internal/domain"
)

// estimateRule maps brand keywords to a flat fallback price. Rules are
// ordered and mutually exclusive: the first match wins.
type estimateRule struct {
	nameKeywords   []string
	sourceKeywords []string
	price          string
}

var estimateRules = []estimateRule{
	{nameKeywords: []string{"apple watch"}, sourceKeywords: []string{"apple"}, price: "399"},
	{nameKeywords: []string{"garmin"}, sourceKeywords: []string{"garmin"}, price: "299"},
	{nameKeywords: []string{"amazfit"}, sourceKeywords: []string{"amazfit"}, price: "149"},
	{nameKeywords: []string{"fitbit"}, sourceKeywords: []string{"fitbit"}, price: "199"},
	{nameKeywords: []string{"omega", "tudor", "vacheron", "constantin", "luxury"}, price: "2999"},
}

// EstimatePrice fills in a heuristic flat price for a record that has none,
// marking the record so callers can tell estimated prices from real ones.
// Records that already carry a price are returned unchanged. Currency is
// left as whatever the adapter set.
func EstimatePrice(record domain.ProductRecord, query string) domain.ProductRecord {
	if record.Price != "" {
		return record
	}

	name := strings.ToLower(record.ProductName)
	source := strings.ToLower(record.Source)

	for _, rule := range estimateRules {
		if matchesRule(rule, name, source) {
			record.Price = rule.price
			record.EnsureInfo().PriceEstimated = true
			return record
		}
	}

	// Generic fallback for unbranded smartwatches
	if strings.Contains(name, "smartwatch") || strings.Contains(name, "smart watch") ||
		strings.Contains(strings.ToLower(query), "smartwatch") {
		record.Price = "149"
		record.EnsureInfo().PriceEstimated = true
	}

	return record
}

func matchesRule(rule estimateRule, name, source string) bool {
	for _, kw := range rule.nameKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	for _, kw := range rule.sourceKeywords {
		if strings.Contains(source, kw) {
			return true
		}
	}
	return false
}
