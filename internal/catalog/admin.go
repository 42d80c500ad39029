package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/brasil-hosp/go-backend/internal/domain"
)

// SortOrder — порядок списка в панели администратора.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
	SortAZ     SortOrder = "az"
)

// ParseSortOrder возвращает SortNewest для пустых и неизвестных значений.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortOldest:
		return SortOldest
	case SortAZ:
		return SortAZ
	default:
		return SortNewest
	}
}

// AdminQuery — фильтры списка товаров в панели.
type AdminQuery struct {
	Search   string // подстрока названия или id, без учёта регистра
	Category string
	Sort     SortOrder
}

// AdminList фильтрует и сортирует товары для панели администратора.
func AdminList(products []domain.Product, q AdminQuery) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.ID), needle) {
			continue
		}
		if !IsAll(q.Category) && string(p.Category) != q.Category {
			continue
		}
		result = append(result, p)
	}

	switch q.Sort {
	case SortAZ:
		sort.SliceStable(result, func(i, j int) bool {
			return Fold(result[i].Name) < Fold(result[j].Name)
		})
	case SortOldest:
		sort.SliceStable(result, func(i, j int) bool {
			return newer(result[j], result[i])
		})
	default:
		sort.SliceStable(result, func(i, j int) bool {
			return newer(result[i], result[j])
		})
	}

	return result
}

// newer сравнивает по времени создания, а при равенстве по id
// (в таблице id хранит метку времени в миллисекундах).
func newer(a, b domain.Product) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}

	ai, aErr := strconv.ParseInt(a.ID, 10, 64)
	bi, bErr := strconv.ParseInt(b.ID, 10, 64)
	if aErr == nil && bErr == nil {
		return ai > bi
	}

	return a.ID > b.ID
}
