package domain

import "time"

// CategoryName — значение из фиксированного набора категорий каталога.
type CategoryName string

const (
	CategoryMedications CategoryName = "Medicamentos"
	CategoryDisposables CategoryName = "Descartáveis"
	CategoryEquipment   CategoryName = "Equipamentos"
	CategoryOrthopedics CategoryName = "Ortopedia"
	CategoryFurniture   CategoryName = "Mobiliário"
	CategoryDentistry   CategoryName = "Odontologia"
	CategoryWellness    CategoryName = "Cuidados e Bem-Estar"
)

// Categories — порядок отображения категорий на сайте.
var Categories = []CategoryName{
	CategoryMedications,
	CategoryDisposables,
	CategoryEquipment,
	CategoryOrthopedics,
	CategoryFurniture,
	CategoryDentistry,
	CategoryWellness,
}

// Known сообщает, входит ли значение в фиксированный набор.
// Товары с неизвестной категорией считаются «без категории».
func (c CategoryName) Known() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Category описывает категорию, хранящуюся в таблице categories
type Category struct {
	ID        int64
	Name      CategoryName
	Position  int
	CreatedAt time.Time
	UpdatedAt *time.Time
	IsActive  bool
}
