package converter

import (
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
)

// CategoryConverter преобразует сущности Category между domain и моделью PostgreSQL.
type CategoryConverter interface {
	ToEntity(model *CategoryModel) *domain.Category
	ToArrEntity(models []CategoryModel) []domain.Category
}

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter interface {
	ToEntity(model *ProductModel) *domain.Product
	ToViewEntity(model *ProductWithCategoryModel) *domain.ProductWithCategory
	ToArrViewEntity(models []ProductWithCategoryModel) []domain.ProductWithCategory
}

// ProfileConverter преобразует профили и учётные записи.
type ProfileConverter interface {
	ToEntity(model *ProfileModel) (*domain.Profile, error)
	ToUserEntity(model *UserModel) *domain.User
}

// OrderConverter преобразует заказы и их представления.
type OrderConverter interface {
	ToEntity(model *OrderModel) *domain.Order
	ToArrViewEntity(models []OrderViewModel) []domain.OrderView
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []OutboxEventModel) []*usecase.OutboxEvent
}

type CategoryConverterImpl struct{}

func NewCategoryConverterImpl() *CategoryConverterImpl {
	return &CategoryConverterImpl{}
}

func (CategoryConverterImpl) ToEntity(model *CategoryModel) *domain.Category {
	if model == nil {
		return nil
	}

	return &domain.Category{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func (c CategoryConverterImpl) ToArrEntity(models []CategoryModel) []domain.Category {
	out := make([]domain.Category, 0, len(models))
	for i := range models {
		out = append(out, *c.ToEntity(&models[i]))
	}

	return out
}

type ProductConverterImpl struct{}

func NewProductConverterImpl() *ProductConverterImpl {
	return &ProductConverterImpl{}
}

func (ProductConverterImpl) ToEntity(model *ProductModel) *domain.Product {
	if model == nil {
		return nil
	}

	return &domain.Product{
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
	}
}

func (p ProductConverterImpl) ToViewEntity(model *ProductWithCategoryModel) *domain.ProductWithCategory {
	if model == nil {
		return nil
	}

	return &domain.ProductWithCategory{
		Product:      *p.ToEntity(&model.ProductModel),
		CategoryName: model.CategoryName,
	}
}

func (p ProductConverterImpl) ToArrViewEntity(models []ProductWithCategoryModel) []domain.ProductWithCategory {
	out := make([]domain.ProductWithCategory, 0, len(models))
	for i := range models {
		out = append(out, *p.ToViewEntity(&models[i]))
	}

	return out
}

type ProfileConverterImpl struct{}

func NewProfileConverterImpl() *ProfileConverterImpl {
	return &ProfileConverterImpl{}
}

func (ProfileConverterImpl) ToEntity(model *ProfileModel) (*domain.Profile, error) {
	if model == nil {
		return nil, nil
	}

	role, err := domain.ParseRole(model.Role)
	if err != nil {
		return nil, err
	}

	return &domain.Profile{
		ID:        model.ID,
		Username:  model.Username,
		Role:      role,
		CreatedAt: model.CreatedAt,
	}, nil
}

func (ProfileConverterImpl) ToUserEntity(model *UserModel) *domain.User {
	if model == nil {
		return nil
	}

	return &domain.User{
		ID:           model.ID,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		CreatedAt:    model.CreatedAt,
	}
}

type OrderConverterImpl struct{}

func NewOrderConverterImpl() *OrderConverterImpl {
	return &OrderConverterImpl{}
}

func (OrderConverterImpl) ToEntity(model *OrderModel) *domain.Order {
	if model == nil {
		return nil
	}

	return &domain.Order{
		ID:        model.ID,
		UserID:    model.UserID,
		ProductID: model.ProductID,
		Status:    domain.OrderStatus(model.Status),
		CreatedAt: model.CreatedAt,
	}
}

func (o OrderConverterImpl) ToArrViewEntity(models []OrderViewModel) []domain.OrderView {
	out := make([]domain.OrderView, 0, len(models))
	for i := range models {
		m := &models[i]
		view := domain.OrderView{Order: *o.ToEntity(&m.OrderModel)}

		if m.PurchaserUsername != nil {
			view.Purchaser = &domain.OrderPurchaser{Username: *m.PurchaserUsername}
		}

		// Товар есть, только если строка products присоединилась целиком
		if m.JoinedProductID != nil && m.ProductName != nil && m.ProductPrice != nil && m.ProductModel != nil {
			view.Product = &domain.OrderProduct{
				ID:    *m.JoinedProductID,
				Name:  *m.ProductName,
				Price: *m.ProductPrice,
				Model: *m.ProductModel,
			}
		}

		out = append(out, view)
	}

	return out
}

type OutboxEventConverterImpl struct{}

func NewOutboxEventConverterImpl() *OutboxEventConverterImpl {
	return &OutboxEventConverterImpl{}
}

func (OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	if entity == nil {
		return nil
	}

	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   entity.EventType,
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	if model == nil {
		return nil
	}

	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   model.EventType,
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (o OutboxEventConverterImpl) ToArrEntity(models []OutboxEventModel) []*usecase.OutboxEvent {
	out := make([]*usecase.OutboxEvent, 0, len(models))
	for i := range models {
		out = append(out, o.ToEntity(&models[i]))
	}

	return out
}
