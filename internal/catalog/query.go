package catalog

import (
	"sort"
	"strings"

	"github.com/brasil-hosp/go-backend/internal/domain"
)

// All — зарезервированное значение фильтра «не фильтровать по этому измерению».
const All = "All"

// IsAll распознаёт All и синонимы, которые присылает сайт ("Todos", "Todas"), а также пустое значение.
func IsAll(v string) bool {
	switch strings.TrimSpace(v) {
	case "", All, "Todos", "Todas":
		return true
	default:
		return false
	}
}

// Filter — три независимых измерения выборки.
// Нулевое значение Filter не фильтрует ничего.
type Filter struct {
	Category    string
	Subcategory string
	Search      string
}

// Query вычисляет видимое подмножество товаров: сначала нечёткий поиск, затем категория,
// затем подкатегория. Результат никогда не nil, пустая выдача допустима.
func Query(products []domain.Product, f Filter) []domain.Product {
	found := Search(products, f.Search, DefaultThreshold)

	result := make([]domain.Product, 0, len(found))
	for _, p := range found {
		if matchesCategory(p, f.Category) && matchesSubcategory(p, f.Subcategory) {
			result = append(result, p)
		}
	}

	return result
}

// Subcategories строит фасет подкатегорий для выбранной категории:
// уникальные непустые значения по возрастанию, первым элементом всегда All.
func Subcategories(products []domain.Product, category string) []string {
	seen := make(map[string]struct{})
	for _, p := range products {
		if !matchesCategory(p, category) || strings.TrimSpace(p.Subcategory) == "" {
			continue
		}
		seen[p.Subcategory] = struct{}{}
	}

	subs := make([]string, 0, len(seen))
	for sub := range seen {
		subs = append(subs, sub)
	}
	sort.Strings(subs)

	return append([]string{All}, subs...)
}

// Товар без известной категории виден только под All.
func matchesCategory(p domain.Product, category string) bool {
	if IsAll(category) {
		return true
	}
	return p.Category.Known() && string(p.Category) == category
}

func matchesSubcategory(p domain.Product, subcategory string) bool {
	return IsAll(subcategory) || p.Subcategory == subcategory
}
