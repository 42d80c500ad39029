package catalog

import (
	"sort"

	"github.com/brasil-hosp/go-backend/internal/domain"
)

const (
	// OtherCategory — под этим именем считаются товары без категории
	OtherCategory       = "Outros"
	topSubcategoriesLen = 5
)

type Count struct {
	Name  string
	Value int
}

// Stats — сводка для дашборда панели администратора.
type Stats struct {
	Total            int
	Categories       []Count // по убыванию количества
	Largest          *Count
	TopSubcategories []Count
}

func ComputeStats(products []domain.Product) Stats {
	categories := make(map[string]int)
	subcategories := make(map[string]int)

	for _, p := range products {
		cat := string(p.Category)
		if cat == "" {
			cat = OtherCategory
		}
		categories[cat]++

		if p.Subcategory != "" {
			subcategories[p.Subcategory]++
		}
	}

	stats := Stats{
		Total:      len(products),
		Categories: sortCounts(categories),
	}

	if len(stats.Categories) > 0 {
		largest := stats.Categories[0]
		stats.Largest = &largest
	}

	top := sortCounts(subcategories)
	if len(top) > topSubcategoriesLen {
		top = top[:topSubcategoriesLen]
	}
	stats.TopSubcategories = top

	return stats
}

// sortCounts упорядочивает по убыванию, при равенстве по имени.
func sortCounts(m map[string]int) []Count {
	counts := make([]Count, 0, len(m))
	for name, value := range m {
		counts = append(counts, Count{Name: name, Value: value})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Value != counts[j].Value {
			return counts[i].Value > counts[j].Value
		}
		return counts[i].Name < counts[j].Name
	})

	return counts
}
