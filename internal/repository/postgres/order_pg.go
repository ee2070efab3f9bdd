// internal/repository/postgres/order_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"finvest-api/internal/domain"
	"finvest-api/internal/repository"
	"finvest-api/internal/util"

	"github.com/jmoiron/sqlx"
)

// CarRepository implements repository.CarRepository for PostgreSQL.
type CarRepository struct{}

// NewCarRepository creates a new CarRepository.
func NewCarRepository(db *sqlx.DB) repository.CarRepository {
	return &CarRepository{}
}

const carColumns = `id, model, year, price, image_url, available, created_at, updated_at`

// CreateCar inserts a new car listing.
func (r *CarRepository) CreateCar(ctx context.Context, q repository.DBExecutor, car *domain.Car) error {
	query := `INSERT INTO cars (model, year, price, image_url, available, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		car.Model, car.Year, car.Price, car.ImageURL, car.Available, car.CreatedAt, car.UpdatedAt,
	).Scan(&car.ID)
	if err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}
	return nil
}

// GetCarByID retrieves a car by its ID.
func (r *CarRepository) GetCarByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Car, error) {
	var car domain.Car
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`
	err := q.GetContext(ctx, &car, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get car %d: %w", id, err)
	}
	return &car, nil
}

// ListCars retrieves a paginated list of cars with the total count.
func (r *CarRepository) ListCars(ctx context.Context, q repository.DBExecutor, onlyAvailable bool, limit, offset int) ([]domain.Car, int64, error) {
	cars := []domain.Car{}
	query := `SELECT ` + carColumns + ` FROM cars WHERE ($1 = false OR available) ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &cars, query, onlyAvailable, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list cars: %w", err)
	}
	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM cars WHERE ($1 = false OR available)`, onlyAvailable); err != nil {
		return nil, 0, fmt.Errorf("failed to count cars: %w", err)
	}
	return cars, totalCount, nil
}

// SetCarAvailability flips a listing's availability.
func (r *CarRepository) SetCarAvailability(ctx context.Context, q repository.DBExecutor, id int64, available bool) error {
	query := `UPDATE cars SET available = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, available, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set car %d availability: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for car %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// OrderRepository implements repository.OrderRepository for PostgreSQL.
type OrderRepository struct{}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) repository.OrderRepository {
	return &OrderRepository{}
}

const orderColumns = `id, reference, user_id, car_id, amount, status, payment_hash, expires_at, created_at, updated_at`

// CreateOrder inserts a new checkout order.
func (r *OrderRepository) CreateOrder(ctx context.Context, q repository.DBExecutor, order *domain.Order) error {
	query := `INSERT INTO orders (reference, user_id, car_id, amount, status, payment_hash, expires_at, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		order.Reference, order.UserID, order.CarID, order.Amount, order.Status,
		order.PaymentHash, order.ExpiresAt, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetOrderByID retrieves an order by its ID.
func (r *OrderRepository) GetOrderByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Order, error) {
	var order domain.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	err := q.GetContext(ctx, &order, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return &order, nil
}

// GetOrderByIDForUpdate retrieves an order with a row lock. The caller
// must be inside a transaction.
func (r *OrderRepository) GetOrderByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Order, error) {
	var order domain.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &order, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock order %d: %w", id, err)
	}
	return &order, nil
}

// SetOrderStatus transitions an order only when it still has the from
// status; false means another transition won the race.
func (r *OrderRepository) SetOrderStatus(ctx context.Context, q repository.DBExecutor, id int64, from, to domain.OrderStatus) (bool, error) {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := q.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to set order %d status: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for order %d: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// SetOrderPaid records the payment hash and moves PENDING to PAID.
func (r *OrderRepository) SetOrderPaid(ctx context.Context, q repository.DBExecutor, id int64, paymentHash string) (bool, error) {
	query := `UPDATE orders SET status = $1, payment_hash = $2, updated_at = $3 WHERE id = $4 AND status = $5`
	result, err := q.ExecContext(ctx, query, domain.OrderStatusPaid, paymentHash, time.Now().UTC(), id, domain.OrderStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to mark order %d paid: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for order %d: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// ListOrdersByUserID retrieves a user's orders, newest first, with the total count.
func (r *OrderRepository) ListOrdersByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Order, int64, error) {
	orders := []domain.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &orders, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list orders for user %d: %w", userID, err)
	}
	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders for user %d: %w", userID, err)
	}
	return orders, totalCount, nil
}
