package converter

import (
	"github.com/brasil-hosp/go-backend/internal/domain"
)

// ProductConverter преобразует товары между domain и моделью Redis.
type ProductConverter struct{}

func (ProductConverter) ToRedisModel(entity *domain.Product) ProductRedisModel {
	return ProductRedisModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Category:    string(entity.Category),
		Subcategory: entity.Subcategory,
		Description: entity.Description,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func (ProductConverter) ToEntity(model *ProductRedisModel) domain.Product {
	return domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Category:    domain.CategoryName(model.Category),
		Subcategory: model.Subcategory,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func (c ProductConverter) ToArrRedisModel(entities []domain.Product) []ProductRedisModel {
	models := make([]ProductRedisModel, len(entities))
	for i := range entities {
		models[i] = c.ToRedisModel(&entities[i])
	}
	return models
}

func (c ProductConverter) ToArrEntity(models []ProductRedisModel) []domain.Product {
	entities := make([]domain.Product, len(models))
	for i := range models {
		entities[i] = c.ToEntity(&models[i])
	}
	return entities
}
