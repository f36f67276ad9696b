package converter

import "github.com/DRSN-tech/storefront/internal/domain"

type ProductConverter interface {
	ToRedisModel(entity *domain.ProductWithCategory) *ProductRedisModel
	ToEntity(model *ProductRedisModel) *domain.ProductWithCategory
}

type CategoryConverter interface {
	ToArrRedisModel(entities []domain.Category) []CategoryRedisModel
	ToArrEntity(models []CategoryRedisModel) []domain.Category
}

type ProductConverterImpl struct{}

func NewProductConverterImpl() *ProductConverterImpl {
	return &ProductConverterImpl{}
}

func (ProductConverterImpl) ToRedisModel(entity *domain.ProductWithCategory) *ProductRedisModel {
	if entity == nil {
		return nil
	}

	return &ProductRedisModel{
		ID:           entity.ID,
		Name:         entity.Name,
		Description:  entity.Description,
		Price:        entity.Price,
		Model:        entity.Model,
		ImageURL:     entity.ImageURL,
		YoutubeLink:  entity.YoutubeLink,
		Stock:        entity.Stock,
		CategoryID:   entity.CategoryID,
		CategoryName: entity.CategoryName,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
	}
}

func (ProductConverterImpl) ToEntity(model *ProductRedisModel) *domain.ProductWithCategory {
	if model == nil {
		return nil
	}

	return &domain.ProductWithCategory{
		Product: domain.Product{
			ID:          model.ID,
			Name:        model.Name,
			Description: model.Description,
			Price:       model.Price,
			Model:       model.Model,
			ImageURL:    model.ImageURL,
			YoutubeLink: model.YoutubeLink,
			Stock:       model.Stock,
			CategoryID:  model.CategoryID,
			CreatedAt:   model.CreatedAt,
			UpdatedAt:   model.UpdatedAt,
		},
		CategoryName: model.CategoryName,
	}
}

type CategoryConverterImpl struct{}

func NewCategoryConverterImpl() *CategoryConverterImpl {
	return &CategoryConverterImpl{}
}

func (CategoryConverterImpl) ToArrRedisModel(entities []domain.Category) []CategoryRedisModel {
	out := make([]CategoryRedisModel, 0, len(entities))
	for _, c := range entities {
		out = append(out, CategoryRedisModel{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
		})
	}

	return out
}

func (CategoryConverterImpl) ToArrEntity(models []CategoryRedisModel) []domain.Category {
	out := make([]domain.Category, 0, len(models))
	for _, m := range models {
		out = append(out, domain.Category{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			CreatedAt:   m.CreatedAt,
			UpdatedAt:   m.UpdatedAt,
		})
	}

	return out
}
