// internal/service/order_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finvest-api/internal/auth"
	"finvest-api/internal/domain"
	"finvest-api/internal/media"
	"finvest-api/internal/notify"
	"finvest-api/internal/repository"
	"finvest-api/internal/util"
	"finvest-api/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService defines the business logic for car listings and the
// checkout state machine: pending -> paid -> (confirmed | cancelled),
// pending -> (expired | cancelled). Expiry is lazy: a pending order past
// its deadline is expired when it is next read or acted on.
type OrderService interface {
	CreateCar(ctx context.Context, model string, year int, price decimal.Decimal, imageBase64 string) (*domain.Car, error)
	ListCars(ctx context.Context, onlyAvailable bool, limit, offset int) ([]domain.Car, int64, error)

	// Checkout creates a pending order for the car and reserves it.
	Checkout(ctx context.Context, userID, carID int64) (*domain.Order, error)
	// GetOrder returns an order, applying lazy expiry. Only the buyer and
	// admins may read it.
	GetOrder(ctx context.Context, principal auth.Principal, orderID int64) (*domain.Order, error)
	// SubmitPayment validates the payment hash format and moves the order
	// from pending to paid.
	SubmitPayment(ctx context.Context, userID, orderID int64, paymentHash string) (*domain.Order, error)
	// SetOrderStatus confirms (admin) or cancels (buyer or admin) an order.
	SetOrderStatus(ctx context.Context, principal auth.Principal, orderID int64, status domain.OrderStatus) (*domain.Order, error)
	ListOrders(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, int64, error)
}

// orderService implements the OrderService interface.
type orderService struct {
	dbBeginner db.DBTxBeginner
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
	carRepo    repository.CarRepository
	orderRepo  repository.OrderRepository
	uploader   media.Uploader
	mailer     notify.Mailer
	orderTTL   time.Duration
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
	now        func() time.Time
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	carRepo repository.CarRepository,
	orderRepo repository.OrderRepository,
	uploader media.Uploader,
	mailer notify.Mailer,
	orderTTL time.Duration,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) OrderService {
	return &orderService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		carRepo:    carRepo,
		orderRepo:  orderRepo,
		uploader:   uploader,
		mailer:     mailer,
		orderTTL:   orderTTL,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateCar stores the listing image and inserts the listing.
func (s *orderService) CreateCar(ctx context.Context, model string, year int, price decimal.Decimal, imageBase64 string) (*domain.Car, error) {
	if model == "" || year <= 0 || price.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	imageURL := ""
	if imageBase64 != "" {
		url, _, err := s.uploader.UploadBase64(ctx, fmt.Sprintf("car-%s-%d", model, year), imageBase64)
		if err != nil {
			return nil, fmt.Errorf("create car: failed to upload image: %w", err)
		}
		imageURL = url
	}

	car := domain.NewCar(model, year, price, imageURL)
	if err := s.carRepo.CreateCar(ctx, s.dbExecutor, car); err != nil {
		return nil, fmt.Errorf("create car: %w", err)
	}
	return car, nil
}

// ListCars retrieves listings with the total count.
func (s *orderService) ListCars(ctx context.Context, onlyAvailable bool, limit, offset int) ([]domain.Car, int64, error) {
	return s.carRepo.ListCars(ctx, s.dbExecutor, onlyAvailable, limit, offset)
}

// Checkout creates a pending order for the car and reserves the listing.
func (s *orderService) Checkout(ctx context.Context, userID, carID int64) (*domain.Order, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("checkout: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("checkout: transaction controller does not implement DBExecutor")
	}

	car, err := s.carRepo.GetCarByID(ctx, txExecutor, carID)
	if err != nil {
		return nil, fmt.Errorf("checkout: failed to get car %d: %w", carID, err)
	}
	if !car.Available {
		return nil, util.ErrInvalidInput
	}

	order := domain.NewOrder(uuid.NewString(), userID, carID, car.Price, s.now().Add(s.orderTTL))
	if err := s.orderRepo.CreateOrder(ctx, txExecutor, order); err != nil {
		return nil, fmt.Errorf("checkout: failed to create order: %w", err)
	}
	if err := s.carRepo.SetCarAvailability(ctx, txExecutor, carID, false); err != nil {
		return nil, fmt.Errorf("checkout: failed to reserve car: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("checkout: failed to commit transaction: %w", err)
	}

	s.notifyUser(ctx, userID, "Order created",
		fmt.Sprintf("Your order %s for the %d %s (%s USD) is pending payment until %s.",
			order.Reference, car.Year, car.Model, order.Amount.String(), order.ExpiresAt.Format(time.RFC3339)))
	return order, nil
}

// GetOrder returns an order, applying lazy expiry.
func (s *orderService) GetOrder(ctx context.Context, principal auth.Principal, orderID int64) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, s.dbExecutor, orderID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.UserID != principal.UserID && !principal.IsAdmin {
		return nil, util.ErrForbidden
	}

	if order.IsExpired(s.now()) {
		expired, err := s.expireOrder(ctx, order)
		if err != nil {
			return nil, err
		}
		return expired, nil
	}
	return order, nil
}

// SubmitPayment validates the hash format and moves pending to paid.
func (s *orderService) SubmitPayment(ctx context.Context, userID, orderID int64, paymentHash string) (*domain.Order, error) {
	if !domain.ValidPaymentHash(paymentHash) {
		return nil, util.ErrInvalidPaymentHash
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("submit payment: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("submit payment: transaction controller does not implement DBExecutor")
	}

	order, err := s.orderRepo.GetOrderByIDForUpdate(ctx, txExecutor, orderID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrOrderNotFound
		}
		return nil, fmt.Errorf("submit payment: failed to lock order %d: %w", orderID, err)
	}
	if order.UserID != userID {
		return nil, util.ErrForbidden
	}

	if order.IsExpired(s.now()) {
		if err := s.applyExpiry(ctx, txExecutor, order); err != nil {
			return nil, err
		}
		if err := s.commitTx(txController); err != nil {
			return nil, fmt.Errorf("submit payment: failed to commit expiry: %w", err)
		}
		return nil, util.ErrOrderExpired
	}
	if order.Status != domain.OrderStatusPending {
		return nil, util.ErrInvalidTransition
	}

	applied, err := s.orderRepo.SetOrderPaid(ctx, txExecutor, orderID, paymentHash)
	if err != nil {
		return nil, fmt.Errorf("submit payment: %w", err)
	}
	if !applied {
		return nil, util.ErrInvalidTransition
	}
	order.Status = domain.OrderStatusPaid
	order.PaymentHash = &paymentHash

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("submit payment: failed to commit transaction: %w", err)
	}

	s.notifyUser(ctx, userID, "Payment received",
		fmt.Sprintf("Payment for order %s was recorded and is awaiting confirmation.", order.Reference))
	return order, nil
}

// SetOrderStatus confirms or cancels an order.
func (s *orderService) SetOrderStatus(ctx context.Context, principal auth.Principal, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	if status != domain.OrderStatusConfirmed && status != domain.OrderStatusCancelled {
		return nil, util.ErrInvalidInput
	}
	if status == domain.OrderStatusConfirmed && !principal.IsAdmin {
		return nil, util.ErrForbidden
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("set order status: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("set order status: transaction controller does not implement DBExecutor")
	}

	order, err := s.orderRepo.GetOrderByIDForUpdate(ctx, txExecutor, orderID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrOrderNotFound
		}
		return nil, fmt.Errorf("set order status: failed to lock order %d: %w", orderID, err)
	}
	if order.UserID != principal.UserID && !principal.IsAdmin {
		return nil, util.ErrForbidden
	}

	if order.IsExpired(s.now()) {
		if err := s.applyExpiry(ctx, txExecutor, order); err != nil {
			return nil, err
		}
		if err := s.commitTx(txController); err != nil {
			return nil, fmt.Errorf("set order status: failed to commit expiry: %w", err)
		}
		return nil, util.ErrOrderExpired
	}

	if !order.Status.CanTransition(status) {
		return nil, util.ErrInvalidTransition
	}
	applied, err := s.orderRepo.SetOrderStatus(ctx, txExecutor, orderID, order.Status, status)
	if err != nil {
		return nil, fmt.Errorf("set order status: %w", err)
	}
	if !applied {
		return nil, util.ErrInvalidTransition
	}
	order.Status = status

	// A cancelled order releases the car back to the listings.
	if status == domain.OrderStatusCancelled {
		if err := s.carRepo.SetCarAvailability(ctx, txExecutor, order.CarID, true); err != nil {
			return nil, fmt.Errorf("set order status: failed to release car: %w", err)
		}
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("set order status: failed to commit transaction: %w", err)
	}

	s.notifyUser(ctx, order.UserID, "Order "+string(status),
		fmt.Sprintf("Your order %s is now %s.", order.Reference, status))
	return order, nil
}

// ListOrders retrieves a user's orders.
func (s *orderService) ListOrders(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, int64, error) {
	return s.orderRepo.ListOrdersByUserID(ctx, s.dbExecutor, userID, limit, offset)
}

// expireOrder persists a lazy expiry observed outside a transaction.
func (s *orderService) expireOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("expire order: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("expire order: transaction controller does not implement DBExecutor")
	}

	if err := s.applyExpiry(ctx, txExecutor, order); err != nil {
		return nil, err
	}
	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("expire order: failed to commit transaction: %w", err)
	}
	return order, nil
}

// applyExpiry marks the order expired and releases the car. The
// conditional status update keeps this race-free: whichever reader
// expires the order first wins, later ones apply nothing.
func (s *orderService) applyExpiry(ctx context.Context, q repository.DBExecutor, order *domain.Order) error {
	applied, err := s.orderRepo.SetOrderStatus(ctx, q, order.ID, domain.OrderStatusPending, domain.OrderStatusExpired)
	if err != nil {
		return fmt.Errorf("failed to expire order %d: %w", order.ID, err)
	}
	if !applied {
		// Someone else moved the order off PENDING first, e.g. a payment
		// that landed just before the deadline check. The row holds the
		// truth now, so report that instead of a stale expiry.
		current, err := s.orderRepo.GetOrderByID(ctx, q, order.ID)
		if err != nil {
			return fmt.Errorf("failed to re-read order %d after lost expiry: %w", order.ID, err)
		}
		*order = *current
		return nil
	}
	if err := s.carRepo.SetCarAvailability(ctx, q, order.CarID, true); err != nil {
		return fmt.Errorf("failed to release car for expired order %d: %w", order.ID, err)
	}
	order.Status = domain.OrderStatusExpired
	return nil
}

// notifyUser enqueues a status email; failures never affect the operation.
func (s *orderService) notifyUser(ctx context.Context, userID int64, subject, body string) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		return
	}
	s.mailer.Enqueue(notify.Email{
		To:      user.Email,
		Subject: subject,
		HTML:    fmt.Sprintf("<p>Hi %s,</p><p>%s</p>", user.FullName, body),
	})
}
