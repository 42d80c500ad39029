package domain

import "time"

// DescriptionFallback подставляется при выдаче, если у товара нет описания.
const DescriptionFallback = "Descrição indisponível."

// Product описывает товар каталога
type Product struct {
	ID          string // непрозрачный идентификатор; числовые id таблицы хранятся строкой
	Name        string
	Category    CategoryName
	Subcategory string
	Description string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewProduct(id string, name string, category CategoryName, subcategory string, description string) *Product {
	return &Product{
		ID:          id,
		Name:        name,
		Category:    category,
		Subcategory: subcategory,
		Description: description,
	}
}

// DisplayDescription возвращает описание или запасную строку.
func (p Product) DisplayDescription() string {
	if p.Description == "" {
		return DescriptionFallback
	}
	return p.Description
}
