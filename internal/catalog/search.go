package catalog

import (
	"slices"
	"strings"
)

// Search returns records whose name contains query, ignoring case, ordered
// by price-per-kilogram ascending. Equal prices keep catalog order. An empty
// query matches every record.
func (e *Engine) Search(query string) []Record {
	needle := fold(query)

	e.mu.RLock()
	found := make([]Record, 0)
	for _, rec := range e.records {
		if strings.Contains(fold(rec.Name), needle) {
			found = append(found, rec)
		}
	}
	e.mu.RUnlock()

	sortByPricePerKg(found)
	return found
}

// SortByPricePerKg returns a copy of records ordered by price-per-kilogram
// ascending. The sort is stable.
func SortByPricePerKg(records []Record) []Record {
	out := append([]Record(nil), records...)
	sortByPricePerKg(out)
	return out
}

func sortByPricePerKg(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return a.PricePerKg.Cmp(b.PricePerKg)
	})
}
