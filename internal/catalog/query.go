package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"storefront/internal/domain"
)

type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "name-asc"
)

// ParseSortKey maps caller-supplied sort strings to a known key; anything
// unrecognized keeps the catalog order.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortPriceAsc, SortPriceDesc, SortNameAsc:
		return SortKey(s)
	default:
		return SortDefault
	}
}

// Query derives a filtered, sorted view of products. Pure: the input slice
// is never mutated, and equal inputs yield equal outputs. Price sorts are
// stable, so ties keep their catalog order.
func Query(products []domain.Product, search string, key SortKey) []domain.Product {
	search = strings.ToLower(strings.TrimSpace(search))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if search == "" || strings.Contains(strings.ToLower(p.Name), search) {
			out = append(out, p)
		}
	}

	switch key {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortNameAsc:
		// Collator is not safe for concurrent use, so each query gets its own.
		c := collate.New(language.French, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Name, out[j].Name) < 0
		})
	}

	return out
}
