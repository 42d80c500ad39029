package catalog

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/brasil-hosp/go-backend/internal/domain"
)

// DefaultThreshold — минимальная схожесть поля с запросом, при которой товар попадает в выдачу.
const DefaultThreshold = 0.6

// Веса полей влияют только на порядок выдачи, но не на порог.
const (
	nameWeight        = 1.0
	subcategoryWeight = 0.9
	categoryWeight    = 0.8
	descriptionWeight = 0.7
)

type scored struct {
	product domain.Product
	rank    float64
}

// Search выполняет нечёткий поиск по названию, описанию, категории и подкатегории.
// Пустой запрос возвращает копию списка в исходном порядке.
// Иначе возвращаются товары, у которых хотя бы одно поле набрало threshold, лучшие первыми;
// при равенстве сохраняется исходный порядок.
func Search(products []domain.Product, term string, threshold float64) []domain.Product {
	query := Fold(term)
	if query == "" {
		return append(make([]domain.Product, 0, len(products)), products...)
	}

	matches := make([]scored, 0, len(products))
	for _, p := range products {
		fields := [...]struct {
			text   string
			weight float64
		}{
			{p.Name, nameWeight},
			{p.Subcategory, subcategoryWeight},
			{string(p.Category), categoryWeight},
			{p.Description, descriptionWeight},
		}

		var (
			matched bool
			rank    float64
		)
		for _, f := range fields {
			s := Similarity(query, Fold(f.text))
			if s >= threshold {
				matched = true
			}
			rank = max(rank, s*f.weight)
		}

		if matched {
			matches = append(matches, scored{product: p, rank: rank})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].rank > matches[j].rank
	})

	result := make([]domain.Product, len(matches))
	for i, m := range matches {
		result[i] = m.product
	}

	return result
}

// Similarity оценивает схожесть уже нормализованных query и text в диапазоне [0, 1].
// Вхождение подстроки даёт 1. Иначе берётся лучшее из сравнений запроса с окнами текста
// той же длины и с отдельными словами текста по расстоянию Левенштейна.
func Similarity(query, text string) float64 {
	if query == "" || text == "" {
		return 0
	}
	if strings.Contains(text, query) {
		return 1
	}

	q := []rune(query)
	t := []rune(text)

	if len(t) <= len(q) {
		return ratio(query, text)
	}

	var best float64
	for i := 0; i+len(q) <= len(t); i++ {
		best = max(best, ratio(query, string(t[i:i+len(q)])))
	}

	for _, word := range strings.Fields(text) {
		best = max(best, ratio(query, word))
	}

	return best
}

func ratio(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 0
	}

	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
