// internal/repository/order_repo.go
package repository

import (
	"context"

	"finvest-api/internal/domain"
)

// CarRepository defines the interface for car listings.
type CarRepository interface {
	CreateCar(ctx context.Context, q DBExecutor, car *domain.Car) error
	GetCarByID(ctx context.Context, q DBExecutor, id int64) (*domain.Car, error)
	ListCars(ctx context.Context, q DBExecutor, onlyAvailable bool, limit, offset int) ([]domain.Car, int64, error)
	SetCarAvailability(ctx context.Context, q DBExecutor, id int64, available bool) error
}

// OrderRepository defines the interface for checkout orders.
type OrderRepository interface {
	CreateOrder(ctx context.Context, q DBExecutor, order *domain.Order) error
	GetOrderByID(ctx context.Context, q DBExecutor, id int64) (*domain.Order, error)
	// GetOrderByIDForUpdate locks the order row so status transitions
	// serialize. Must be called inside a transaction.
	GetOrderByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Order, error)
	// SetOrderStatus transitions the order only when it currently has the
	// from status; false when another transition won.
	SetOrderStatus(ctx context.Context, q DBExecutor, id int64, from, to domain.OrderStatus) (bool, error)
	// SetOrderPaid records the payment hash and moves PENDING to PAID.
	SetOrderPaid(ctx context.Context, q DBExecutor, id int64, paymentHash string) (bool, error)
	ListOrdersByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Order, int64, error)
}
