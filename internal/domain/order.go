package domain

import "time"

// OrderStatus - статус заказа. Сервис записывает только pending, остальные значения приходят извне.
type OrderStatus string

const OrderStatusPending OrderStatus = "pending"

// Order описывает заявку на покупку товара
type Order struct {
	ID        string
	UserID    string
	ProductID *string // nil, если товар удалён
	Status    OrderStatus
	CreatedAt time.Time
}

func NewOrder(userID, productID string) *Order {
	return &Order{
		UserID:    userID,
		ProductID: &productID,
		Status:    OrderStatusPending,
	}
}

// OrderPurchaser - данные покупателя в списке заказов.
type OrderPurchaser struct {
	Username string
}

// OrderProduct - данные товара в списке заказов.
type OrderProduct struct {
	ID    string
	Name  string
	Price int64
	Model string
}

// OrderView - заказ с присоединёнными покупателем и товаром.
// Purchaser и Product равны nil, если связанная запись отсутствует.
type OrderView struct {
	Order
	Purchaser *OrderPurchaser
	Product   *OrderProduct
}

// DashboardStats - счётчики для панели администратора.
type DashboardStats struct {
	Profiles   int64
	Categories int64
	Products   int64
	Orders     int64
}
