package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/google/uuid"
)

// OrderUseCase реализует создание заказов и их просмотр.
type OrderUseCase struct {
	guard       *Guard
	productRepo ProductRepository
	orderRepo   OrderRepository
	outboxRepo  OutboxRepository
	cacheRepo   CacheRepository
	encoder     EventEncoder
	txManager   TxManager
	logger      logger.Logger
}

func NewOrderUC(
	guard *Guard,
	productRepo ProductRepository,
	orderRepo OrderRepository,
	outboxRepo OutboxRepository,
	cacheRepo CacheRepository,
	encoder EventEncoder,
	txManager TxManager,
	logger logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		guard:       guard,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		outboxRepo:  outboxRepo,
		cacheRepo:   cacheRepo,
		encoder:     encoder,
		txManager:   txManager,
		logger:      logger,
	}
}

// PlaceOrder создаёт заказ в статусе pending от имени вызывающего.
// Списание остатка, запись заказа и события order.created выполняются в одной транзакции.
func (o *OrderUseCase) PlaceOrder(ctx context.Context, productID string) (*domain.Order, error) {
	const op = "OrderUseCase.PlaceOrder"

	caller, err := o.guard.Authorize(ctx)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	if productID == "" {
		return nil, e.Wrap(op, e.NewValidationError("product_id", "is required"))
	}

	var order *domain.Order
	err = o.txManager.Do(ctx, func(ctx context.Context) error {
		product, err := o.productRepo.DecrementStock(ctx, productID)
		if err != nil {
			return err
		}

		order, err = o.orderRepo.Create(ctx, domain.NewOrder(caller.Identity.UserID, product.ID))
		if err != nil {
			return err
		}

		return o.enqueueOrderCreated(ctx, order, caller, product)
	})
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	// Остаток изменился, закэшированная карточка товара устарела
	if err := o.cacheRepo.DeleteProduct(ctx, productID); err != nil {
		o.logger.Warnf("Failed to delete product from cache: %v", e.Wrap(op, err))
	}

	o.logger.Infof("order %s placed by user %s for product %s", order.ID, order.UserID, productID)

	return order, nil
}

// enqueueOrderCreated пишет событие о заказе в outbox в текущей транзакции.
func (o *OrderUseCase) enqueueOrderCreated(ctx context.Context, order *domain.Order, caller *Caller, product *domain.Product) error {
	eventID := uuid.NewString()

	payload, err := o.encoder.EncodeOrderCreated(&OrderCreatedEvent{
		EventID:     eventID,
		OrderID:     order.ID,
		UserID:      caller.Identity.UserID,
		Username:    caller.Profile.Username,
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       product.Price,
		CreatedAt:   order.CreatedAt,
	})
	if err != nil {
		return err
	}

	_, err = o.outboxRepo.Create(ctx, NewOutboxEvent(eventID, EventOrderCreated, order.ID, payload))
	return err
}

// ListOrders возвращает все заказы администратору и только собственные заказы остальным.
func (o *OrderUseCase) ListOrders(ctx context.Context) ([]domain.OrderView, error) {
	const op = "OrderUseCase.ListOrders"

	caller, err := o.guard.Authorize(ctx)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	orders, err := o.listFor(ctx, caller)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	return orders, nil
}

// MyProfile возвращает профиль вызывающего и его заказы.
func (o *OrderUseCase) MyProfile(ctx context.Context) (*ProfileRes, error) {
	const op = "OrderUseCase.MyProfile"

	caller, err := o.guard.Authorize(ctx)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	userID := caller.Identity.UserID
	orders, err := o.orderRepo.List(ctx, &userID)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	return &ProfileRes{
		Profile: caller.Profile,
		Email:   caller.Identity.Email,
		Orders:  nonNilOrders(orders),
	}, nil
}

func (o *OrderUseCase) listFor(ctx context.Context, caller *Caller) ([]domain.OrderView, error) {
	var userID *string
	if !caller.IsAdmin() {
		id := caller.Identity.UserID
		userID = &id
	}

	orders, err := o.orderRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	return nonNilOrders(orders), nil
}

func nonNilOrders(orders []domain.OrderView) []domain.OrderView {
	if orders == nil {
		return make([]domain.OrderView, 0)
	}

	return orders
}
