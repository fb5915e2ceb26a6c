package usecase

import (
	"sort"

	"github.com/pricescout/backend/internal/domain"
)

// SortByPrice stable-sorts records ascending by parsed price. A price that
// does not parse as a number sorts as zero, so records with unknown prices
// surface first; ties keep their adapter-concatenation order.
func SortByPrice(records []domain.ProductRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return priceSortKey(records[i].Price) < priceSortKey(records[j].Price)
	})
}
