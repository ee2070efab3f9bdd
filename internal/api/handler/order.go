// internal/api/handler/order.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"finvest-api/internal/api/types"
	"finvest-api/internal/auth"
	"finvest-api/internal/domain"
	"finvest-api/internal/service"
	"finvest-api/internal/util"
)

// OrderHandler handles HTTP requests for the car catalogue and checkout.
type OrderHandler struct {
	service service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{service: svc, logger: logger}
}

type createCarRequest struct {
	Model       string          `json:"model"`
	Year        int             `json:"year"`
	Price       decimal.Decimal `json:"price"`
	ImageBase64 string          `json:"image_base64"`
}

type checkoutRequest struct {
	CarID int64 `json:"car_id"`
}

type paymentRequest struct {
	PaymentHash string `json:"payment_hash"`
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// CreateCar adds a car to the catalogue. Admin only.
// POST /cars
func (h *OrderHandler) CreateCar(w http.ResponseWriter, r *http.Request) {
	var req createCarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	car, err := h.service.CreateCar(r.Context(), req.Model, req.Year, req.Price, req.ImageBase64)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, car)
}

// ListCars returns the catalogue. Public; by default only available cars.
// GET /cars
func (h *OrderHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	onlyAvailable := r.URL.Query().Get("include_sold") != "true"

	cars, totalCount, err := h.service.ListCars(r.Context(), onlyAvailable, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.PaginatedResponse[domain.Car]{
		Data:       cars,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}

// Checkout opens a pending order for a car and reserves it.
// POST /orders
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	order, err := h.service.Checkout(r.Context(), principal.UserID, req.CarID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, order)
}

// GetOrder returns one order, expiring it first if its window has passed.
// GET /orders/{orderID}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	id, err := parseIDParam(r, "orderID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	order, err := h.service.GetOrder(r.Context(), principal, id)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, order)
}

// SubmitPayment attaches a payment hash to a pending order.
// POST /orders/{orderID}/payment
func (h *OrderHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	id, err := parseIDParam(r, "orderID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	order, err := h.service.SubmitPayment(r.Context(), principal.UserID, id, req.PaymentHash)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, order)
}

// SetOrderStatus confirms or cancels an order.
// PUT /orders/{orderID}/status
func (h *OrderHandler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	id, err := parseIDParam(r, "orderID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	var req orderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var status domain.OrderStatus
	switch strings.ToUpper(req.Status) {
	case string(domain.OrderStatusConfirmed):
		status = domain.OrderStatusConfirmed
	case string(domain.OrderStatusCancelled):
		status = domain.OrderStatusCancelled
	default:
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	order, err := h.service.SetOrderStatus(r.Context(), principal, id, status)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, order)
}

// ListOrders returns the caller's orders.
// GET /orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())
	limit, offset := parsePagination(r)

	orders, totalCount, err := h.service.ListOrders(r.Context(), principal.UserID, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.PaginatedResponse[domain.Order]{
		Data:       orders,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}
